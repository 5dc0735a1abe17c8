// Command voicecheck runs transcripts through the voice command interpreter.
// Transcripts come from the arguments, or one per line on stdin.
package main

import (
	"bufio"
	"flag"
	"os"
	"strings"

	"ship-framework-be/pkg/voice"

	"github.com/fatih/color"
)

func main() {
	view := flag.String("view", string(voice.ViewNewProject), "current view (welcome, new_project, database, view_archived)")
	summary := flag.Bool("summary", false, "summary is visible")
	saveable := flag.Bool("saveable", true, "the session can be saved")
	flag.Parse()

	v, ok := voice.ParseView(*view)
	if !ok {
		color.Red("Unknown view %q", *view)
		os.Exit(2)
	}
	vctx := voice.Context{View: v, SummaryVisible: *summary, Saveable: *saveable}

	if flag.NArg() > 0 {
		check(strings.Join(flag.Args(), " "), vctx)
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			check(line, vctx)
		}
	}
	if err := scanner.Err(); err != nil {
		color.Red("Read error: %v", err)
		os.Exit(1)
	}
}

func check(transcript string, vctx voice.Context) {
	color.Cyan("> %s", transcript)
	cmd, ok := voice.Interpret(transcript, vctx)
	if !ok {
		color.Yellow("  no command (%s)", voice.Feedback(cmd, ok))
		return
	}
	color.Green("  %s", cmd.Kind)
	if cmd.Value != "" {
		color.Green("  value: %q", cmd.Value)
	}
	if cmd.StepIndex != voice.FocusedStep {
		color.Green("  step: %d", cmd.StepIndex+1)
	}
	color.White("  %s", voice.Feedback(cmd, ok))
}
