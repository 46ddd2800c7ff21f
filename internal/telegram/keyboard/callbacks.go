package keyboard

import (
	"fmt"
	"strings"
)

// Callback actions
const (
	ActionGender   = "gender"
	ActionMedical  = "med"
	ActionHabit    = "habit"
	ActionDiet     = "diet"
	ActionNext     = "next"
	ActionMethod   = "method"
	ActionConfirm  = "confirm"
	ActionEdit     = "edit"
	ActionReport   = "report"
	ActionDownload = "dl"
)

// Callback values
const (
	ValueOther      = "other"
	ValueNextHabits = "habits"
	ValueNextDiet   = "diet"
	ValueNextSleep  = "sleep"
	ValuePDF        = "pdf"
	ValueCancel     = "cancel"
	ValueOK         = "ok"
	ValueEdit       = "edit"
	ValueReload     = "reload"
	ValueResend     = "resend"
	ValueNew        = "new"
	ValueReregister = "reregister"
)

// CallbackData represents parsed callback data
type CallbackData struct {
	Action string // "gender", "med", "habit", "diet", "next", "method", "confirm", "edit", "report", "dl"
	Value  string // The parameter
}

// ParseCallback parses callback data string
func ParseCallback(data string) (*CallbackData, error) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid callback format: %s", data)
	}

	return &CallbackData{
		Action: parts[0],
		Value:  parts[1],
	}, nil
}

// EncodeCallback creates callback data string
func EncodeCallback(action, value string) string {
	return fmt.Sprintf("%s:%s", action, value)
}
