package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"revision-runtime/backend/internal/codefiles"
	"revision-runtime/backend/internal/docgen"
	"revision-runtime/backend/internal/doctest"
	"revision-runtime/backend/pkg/scripting"
)

func runDocs(cmd *cobra.Command, args []string) error {
	tr, err := codefiles.ReadRevision(args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), docgen.Generate(tr))
	return nil
}

func runDoctest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	tr, err := codefiles.ReadRevision(args[0])
	if err != nil {
		return err
	}
	path, err := doctest.WriteCode(tr, codeDir)
	if err != nil {
		return err
	}

	res, err := doctest.NewPythonRunner(python, timeout).Run(ctx, path)
	if err != nil {
		return err
	}

	out, err := scripting.PrettyJSON(res)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if res.NofFailed > 0 {
		return fmt.Errorf("%d of %d examples failed", res.NofFailed, res.NofAttempted)
	}
	return nil
}
