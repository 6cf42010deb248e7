// Command chordctl is an interactive diagnostic shell for a running
// chordnode, issuing ping/search/table against its text-line port.
// Built on github.com/peterh/liner for readline-style editing.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"chordring/internal/transport"

	"github.com/peterh/liner"
)

func main() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	client := transport.NewClient()

	fmt.Println("chordctl -- commands: ping <addr>, search <key> <addr>, table <addr>, quit")
	for {
		input, err := line.Prompt("chordctl> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if err := dispatch(client, input); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
}

func dispatch(client *transport.Client, input string) error {
	fields := strings.Fields(input)
	switch fields[0] {
	case "quit", "exit":
		os.Exit(0)

	case "ping":
		if len(fields) != 2 {
			return fmt.Errorf("usage: ping <addr>")
		}
		alive, err := client.Ping(fields[1])
		if err != nil {
			return err
		}
		fmt.Println("alive:", alive)

	case "search":
		if len(fields) != 3 {
			return fmt.Errorf("usage: search <key> <addr>")
		}
		val, found, err := client.SearchQuery(fields[2], fields[1])
		if err != nil {
			return err
		}
		if !found {
			fmt.Println("not found")
			return nil
		}
		fmt.Println(val)

	case "table":
		if len(fields) != 2 {
			return fmt.Errorf("usage: table <addr>")
		}
		out, err := client.PrintTable(fields[1])
		if err != nil {
			return err
		}
		fmt.Print(out)

	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}
