/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package cmd

/*****************************************************************************************************************/

import (
	"github.com/nightwatch/platesolve/internal/generate"
	"github.com/nightwatch/platesolve/internal/solve"
	"github.com/spf13/cobra"
)

/*****************************************************************************************************************/

var rootCommand = &cobra.Command{
	Use:   "platesolve",
	Short: "platesolve is a command-line lost-in-space star-tracker plate solver",
	Long:  "platesolve builds pattern-hash catalog databases from star catalogs and solves celestial pointing from image star centroids, without any prior orientation estimate.",
}

/*****************************************************************************************************************/

func init() {
	rootCommand.AddCommand(generate.GenerateCommand)
	rootCommand.AddCommand(solve.SolveCommand)
}

/*****************************************************************************************************************/

func Execute() {
	if err := rootCommand.Execute(); err != nil {
		panic(err)
	}
}

/*****************************************************************************************************************/
