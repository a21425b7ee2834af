// Command l2fwdctl is an interactive shell for l2fwdd's command
// surface: add, delete, set-default-gate, lookup, populate, show,
// stats.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

var errExit = errors.New("exit")

type ctl struct {
	c  *client
	rl *readline.Instance
}

func main() {
	addr := flag.String("addr", "http://127.0.0.1:8080", "l2fwdd control server base URL")
	flag.Parse()

	c := newClient(*addr)
	if err := c.healthy(); err != nil {
		fmt.Fprintf(os.Stderr, "l2fwdctl: cannot reach %s: %v\n", *addr, err)
		os.Exit(1)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "l2fwd> ",
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "l2fwdctl:", err)
		os.Exit(1)
	}
	defer rl.Close()

	shell := &ctl{c: c, rl: rl}
	if err := shell.run(); err != nil && !errors.Is(err, errExit) {
		fmt.Fprintln(os.Stderr, "l2fwdctl:", err)
		os.Exit(1)
	}
}

func historyFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.l2fwdctl_history"
	}
	return ""
}

func (s *ctl) run() error {
	for {
		line, err := s.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if err := s.dispatch(fields[0], fields[1:]); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
}

func (s *ctl) dispatch(cmd string, args []string) error {
	switch cmd {
	case "exit", "quit":
		return errExit
	case "help":
		s.printHelp()
		return nil
	case "add":
		return s.cmdAdd(args)
	case "delete":
		return s.cmdDelete(args)
	case "set-default-gate":
		return s.cmdSetDefaultGate(args)
	case "lookup":
		return s.cmdLookup(args)
	case "populate":
		return s.cmdPopulate(args)
	case "show":
		return s.cmdShow()
	case "stats":
		return s.cmdStats()
	case "flush":
		return s.c.post("/commands/flush", nil, nil)
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
}

func (s *ctl) printHelp() {
	fmt.Fprintln(s.rl.Stderr(), `commands:
  add <mac>=<gate>[,<mac>=<gate>...]
  delete <mac>[,<mac>...]
  set-default-gate <gate>
  lookup <mac>[,<mac>...]
  populate <base-mac> <count> <gate-count>
  show
  stats
  flush
  exit`)
}

func (s *ctl) cmdAdd(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: add <mac>=<gate>[,<mac>=<gate>...]")
	}
	var entries []map[string]any
	for _, pair := range strings.Split(args[0], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return fmt.Errorf("invalid entry %q, want mac=gate", pair)
		}
		gate, err := strconv.ParseUint(kv[1], 10, 16)
		if err != nil {
			return fmt.Errorf("invalid gate in %q: %w", pair, err)
		}
		entries = append(entries, map[string]any{"addr": kv[0], "gate": gate})
	}
	return s.c.post("/commands/add", map[string]any{"entries": entries}, nil)
}

func (s *ctl) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <mac>[,<mac>...]")
	}
	return s.c.post("/commands/delete", map[string]any{"addrs": strings.Split(args[0], ",")}, nil)
}

func (s *ctl) cmdSetDefaultGate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: set-default-gate <gate>")
	}
	gate, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid gate %q: %w", args[0], err)
	}
	return s.c.post("/commands/set_default_gate", map[string]any{"gate": gate}, nil)
}

func (s *ctl) cmdLookup(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: lookup <mac>[,<mac>...]")
	}
	var resp struct {
		Gates []uint16 `json:"gates"`
	}
	addrs := strings.Split(args[0], ",")
	if err := s.c.post("/commands/lookup", map[string]any{"addrs": addrs}, &resp); err != nil {
		return err
	}
	for i, g := range resp.Gates {
		fmt.Fprintf(s.rl.Stdout(), "%s -> %d\n", addrs[i], g)
	}
	return nil
}

func (s *ctl) cmdPopulate(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: populate <base-mac> <count> <gate-count>")
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid count %q: %w", args[1], err)
	}
	gateCount, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid gate-count %q: %w", args[2], err)
	}
	return s.c.post("/commands/populate", map[string]any{
		"base": args[0], "count": count, "gate_count": gateCount,
	}, nil)
}

func (s *ctl) cmdShow() error {
	var entries []struct {
		Addr string `json:"addr"`
		Gate uint16 `json:"gate"`
	}
	if err := s.c.get("/commands/show", &entries); err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(s.rl.Stdout(), "%s -> %d\n", e.Addr, e.Gate)
	}
	return nil
}

func (s *ctl) cmdStats() error {
	var stats map[string]any
	if err := s.c.get("/commands/stats", &stats); err != nil {
		return err
	}
	fmt.Fprintf(s.rl.Stdout(), "size=%v bucket=%v count=%v default_gate=%v\n",
		stats["size"], stats["bucket"], stats["count"], stats["default_gate"])
	return nil
}
