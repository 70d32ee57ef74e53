package repl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lepinkainen/bookfinder/internal/search"
)

// Kind identifies a REPL command.
type Kind int

const (
	KindNone Kind = iota
	KindQuery
	KindNext
	KindPrev
	KindPage
	KindRetry
	KindShow
	KindSort
	KindHelp
	KindQuit
)

// Command is one parsed input line.
type Command struct {
	Kind  Kind
	Text  string
	N     int
	Order search.Order
}

// Parse turns a line into a Command. Lines not starting with ':' are queries.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Kind: KindNone}, nil
	}
	if !strings.HasPrefix(line, ":") {
		return Command{Kind: KindQuery, Text: line}, nil
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command, try :help")
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "n", "next":
		return Command{Kind: KindNext}, nil
	case "p", "prev":
		return Command{Kind: KindPrev}, nil
	case "page":
		n, err := intArg(name, args)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindPage, N: n}, nil
	case "r", "retry":
		return Command{Kind: KindRetry}, nil
	case "show", "s":
		n, err := intArg(name, args)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindShow, N: n}, nil
	case "sort":
		if len(args) != 1 {
			return Command{}, fmt.Errorf(":sort needs one of relevance, newest, oldest")
		}
		order, err := search.ParseOrder(args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindSort, Order: order}, nil
	case "h", "help", "?":
		return Command{Kind: KindHelp}, nil
	case "q", "quit", "exit":
		return Command{Kind: KindQuit}, nil
	default:
		return Command{}, fmt.Errorf("unknown command :%s, try :help", name)
	}
}

func intArg(name string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf(":%s needs a number", name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf(":%s needs a positive number, got %q", name, args[0])
	}
	return n, nil
}
