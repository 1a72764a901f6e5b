package telegram

import (
	"strings"
)

// Callback action constants.
const (
	actionAnswer  = "answer"
	actionCommand = "cmd"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// param returns the i-th parameter or an empty string.
func (cd callbackData) param(i int) string {
	if i < 0 || i >= len(cd.Params) {
		return ""
	}
	return cd.Params[i]
}

func buildAnswerCallback(digit string) string {
	return callbackData{Action: actionAnswer, Params: []string{digit}}.encode()
}

func buildCommandCallback(command string) string {
	return callbackData{Action: actionCommand, Params: []string{command}}.encode()
}
