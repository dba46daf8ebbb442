package cli

import (
	"github.com/ben-ranford/tsesm/internal/app"
)

const longDescription = `tsesm rewrites relative and path-alias import specifiers in a TypeScript
project so they carry the file extension Node's ESM loader requires, and
adds import attributes to JSON and CSS imports.

With no arguments it asks for the tsconfig.json to use.`

const exitCodes = `
Exit codes:
  0  success
  1  conversion or config failure
  2  invalid arguments
  3  --check found files or config that need changes
`

func Usage() string {
	req := app.DefaultRequest()
	cmd := newRootCommand(&req)
	return longDescription + "\n\n" + cmd.UsageString() + exitCodes
}
