package uds

import (
	"context"
	"io"
)

// CmdHnd answers one admin command. Output goes to w, line by line.
type CmdHnd struct {
	Desc  string
	Usage string
	Fn    func(ctx context.Context, args []string, w io.Writer) error
}
