package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"factotum/internal/dispatch"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func errLabel(msg string) string {
	return red("error: ") + msg
}

var runCmd = &cobra.Command{
	Use:   "run [task description]",
	Short: "Execute a single task and print the result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rt, err := buildRuntime(cfg)
		if err != nil {
			return err
		}

		taskText := strings.Join(args, " ")
		fmt.Println(cyan("task: ") + taskText)

		resp, err := rt.pipeline.Submit(context.Background(), taskText)
		if err != nil {
			if dispatch.IsTaskLevelError(err) {
				fmt.Println(errLabel(err.Error()))
				os.Exit(2)
			}
			return err
		}

		printResponse(resp)
		if resp.Status != dispatch.StatusSuccess {
			os.Exit(1)
		}
		return nil
	},
}

func printResponse(resp dispatch.Response) {
	fmt.Println(gray("task id: " + resp.TaskID))
	for _, entry := range resp.Results {
		switch entry.Status {
		case dispatch.StatusSuccess:
			fmt.Println(green("  ✓ ") + bold(entry.Name))
			if entry.Payload != nil {
				if encoded, err := json.MarshalIndent(entry.Payload, "    ", "  "); err == nil {
					fmt.Println("    " + string(encoded))
				}
			}
		default:
			fmt.Println(red("  ✗ ") + bold(entry.Name) + " " + gray(entry.Message))
		}
	}
	if resp.Status == dispatch.StatusSuccess {
		fmt.Println(green("done"))
	} else {
		fmt.Println(red("failed"))
	}
}
