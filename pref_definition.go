package prefhook

import (
	"fmt"
	"strings"
)

// Constants for the supported form control types.
// These should be used for FormItem.Type to ensure consistency.
const (
	// WidgetTextfield is a single line text input.
	WidgetTextfield string = "textfield"
	// WidgetTextarea is a multi line text input.
	WidgetTextarea string = "textarea"
	// WidgetCheckbox is a single on/off checkbox.
	WidgetCheckbox string = "checkbox"
	// WidgetCheckboxes is a set of checkboxes; its value is the list of checked option values.
	WidgetCheckboxes string = "checkboxes"
	// WidgetRadios is a set of radio buttons.
	WidgetRadios string = "radios"
	// WidgetSelect is a drop-down list.
	WidgetSelect string = "select"
)

var validWidgets = map[string]bool{
	WidgetTextfield:  true,
	WidgetTextarea:   true,
	WidgetCheckbox:   true,
	WidgetCheckboxes: true,
	WidgetRadios:     true,
	WidgetSelect:     true,
}

func isValidWidget(t string) bool {
	return validWidgets[t]
}

// hasOptions reports whether the widget picks from FormItem.Options.
func hasOptions(t string) bool {
	return t == WidgetCheckboxes || t == WidgetRadios || t == WidgetSelect
}

// ParseConflictPolicy converts a policy name ("reject", "first-wins",
// "last-wins") to a ConflictPolicy.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return ConflictReject, nil
	case "first-wins", "first":
		return ConflictFirstWins, nil
	case "last-wins", "last":
		return ConflictLastWins, nil
	default:
		return ConflictReject, fmt.Errorf("%w: unknown conflict policy %q", ErrInvalidInput, s)
	}
}
