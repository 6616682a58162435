package awsutil

import (
	"fmt"

	"github.com/mongodb/grip/message"
)

// MakeAPILogMessage returns a structured message for logging an API call
// and its input.
func MakeAPILogMessage(api string, in interface{}) message.Fields {
	return message.Fields{
		"message": "AWS API call",
		"api":     api,
		"input":   fmt.Sprintf("%+v", in),
	}
}
