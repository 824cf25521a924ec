package cliutil

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/meisterluk/shredtrees/internal/shredtreeserr"
)

type jsonError struct {
	Message  string `json:"error"`
	ExitCode int    `json:"code"`
}

// HandleError prints err to w in JSON or plain form, and returns the exit
// code the CLI tool should terminate with.
func HandleError(w io.Writer, err error, jsonOutput bool) int {
	code := shredtreeserr.ExitCode(err)

	if jsonOutput {
		repr, marshalErr := json.Marshal(jsonError{Message: err.Error(), ExitCode: code})
		if marshalErr != nil {
			fmt.Fprintln(w, `{"error":"could not encode error message as JSON","code":1}`)
			return 1
		}
		fmt.Fprintln(w, string(repr))
		return code
	}

	fmt.Fprintln(w, "Error: "+err.Error())
	return code
}
