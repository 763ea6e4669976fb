/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package main

/*****************************************************************************************************************/

import "github.com/nightwatch/platesolve/cmd"

/*****************************************************************************************************************/

func main() {
	cmd.Execute()
}

/*****************************************************************************************************************/
