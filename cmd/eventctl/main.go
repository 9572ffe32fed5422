package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matheus3301/eventd/internal/catalog"
	"github.com/matheus3301/eventd/internal/client"
	"github.com/matheus3301/eventd/internal/config"
	"github.com/matheus3301/eventd/internal/event"
)

func main() {
	addrFlag := flag.String("addr", "", "daemon base URL (default http://127.0.0.1:8080)")
	configFlag := flag.String("config", "", "path to eventd.toml; its listen address is used when -addr is not set")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	addr, err := resolveAddr(*addrFlag, *configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	c := client.New(addr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch args[0] {
	case "send":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: eventctl send <kind> [json-payload]")
			os.Exit(1)
		}
		cmdSend(ctx, c, args[1], payloadArg(args), *jsonFlag)
	case "check":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: eventctl check <kind> [json-payload]")
			os.Exit(1)
		}
		cmdCheck(ctx, c, args[1], payloadArg(args), *jsonFlag)
	case "catalog":
		cmdCatalog(ctx, c, *jsonFlag)
	case "tail":
		prefix := ""
		if len(args) >= 2 {
			prefix = args[1]
		}
		cmdTail(c, prefix, *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

// resolveAddr picks the daemon base URL: an explicit -addr wins, then
// the listen address from -config, then the default port.
func resolveAddr(addr, configPath string) (string, error) {
	if addr != "" {
		return addr, nil
	}
	if configPath == "" {
		return "http://127.0.0.1:8080", nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	listen := cfg.ListenAddr
	if strings.HasPrefix(listen, ":") {
		listen = "127.0.0.1" + listen
	}
	return "http://" + listen, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: eventctl [--addr <url>] [--config <path>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  send <kind> [payload]    Validate and dispatch an event")
	fmt.Fprintln(os.Stderr, "  check <kind> [payload]   Validate without dispatching")
	fmt.Fprintln(os.Stderr, "  catalog                  List event kinds and payload schemas")
	fmt.Fprintln(os.Stderr, "  tail [prefix]            Follow the live event stream")
}

// payloadArg returns the optional JSON payload argument, nil when absent.
func payloadArg(args []string) []byte {
	if len(args) < 3 {
		return nil
	}
	return []byte(args[2])
}

func cmdSend(ctx context.Context, c *client.Client, kind string, payload []byte, jsonOut bool) {
	evt, err := c.Send(ctx, kind, payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(evt)
		return
	}
	fmt.Printf("Accepted: %s\n", evt.Kind)
	fmt.Printf("ID:       %s\n", evt.ID)
	fmt.Printf("At:       %s\n", evt.OccurredAt.Format(time.RFC3339))
}

func cmdCheck(ctx context.Context, c *client.Client, kind string, payload []byte, jsonOut bool) {
	if err := c.Check(ctx, kind, payload); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(map[string]any{"kind": kind, "valid": true})
		return
	}
	fmt.Printf("%s: payload valid\n", kind)
}

func cmdCatalog(ctx context.Context, c *client.Client, jsonOut bool) {
	file, err := c.Catalog(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(file)
		return
	}
	if len(file.Events) == 0 {
		fmt.Println("No event kinds defined.")
		return
	}
	for _, def := range file.Events {
		fmt.Printf("%-28s %s\n", def.Kind, payloadSummary(def.Payload))
	}
}

func cmdTail(c *client.Client, prefix string, jsonOut bool) {
	err := c.Tail(context.Background(), prefix, func(evt event.Envelope) {
		if jsonOut {
			data, _ := json.Marshal(evt)
			fmt.Println(string(data))
			return
		}
		line := fmt.Sprintf("%s  %s", evt.OccurredAt.Format(time.RFC3339), evt.Kind)
		if evt.Payload != nil {
			data, _ := json.Marshal(evt.Payload)
			line += "  " + string(data)
		}
		fmt.Println(line)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// payloadSummary renders a one-line field list, e.g. "user_id:string, role?:string".
func payloadSummary(p *catalog.PayloadDef) string {
	if p == nil {
		return "-"
	}
	parts := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		name := f.Name
		if f.Optional {
			name += "?"
		}
		parts = append(parts, name+":"+f.Type)
	}
	return strings.Join(parts, ", ")
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
