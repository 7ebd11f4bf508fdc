// Package console drives the service-mesh screens of the web console. It
// knows the console's URLs and form selectors; element handling is delegated
// to a Driver.
package console

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a helper is called with a value the
// console form would reject.
var ErrInvalidInput = errors.New("invalid input")

// Driver is the set of DOM interactions the resource helpers are composed of.
// Selectors are CSS selectors understood by the browser engine, including the
// :visible pseudo class.
type Driver interface {
	Visit(url string) error
	Click(selector string) error
	ClickNth(selector string, index int) error
	ClickButton(label string) error
	ChooseComboboxOption(selector, option string, filterFilled bool) error
	ChooseComboboxFixedOption(selector, option string) error
	InputClearAndType(selector, value string, filterFilled bool) error
	TypeIntoNth(selector string, index int, value string) error
	TypeIntoFirstEmpty(selector, value string) error
	AddFormGroupItem(selector string) error
	UploadFile(selector, path string) error
}

// form runs a sequence of driver calls and keeps the first error, so resource
// helpers read as the list of steps a user performs.
type form struct {
	d   Driver
	err error
}

func newForm(d Driver) *form {
	return &form{d: d}
}

func (f *form) do(fn func() error) {
	if f.err != nil {
		return
	}
	f.err = fn()
}

func (f *form) click(selector string) {
	f.do(func() error { return f.d.Click(selector) })
}

func (f *form) clickNth(selector string, index int) {
	f.do(func() error { return f.d.ClickNth(selector, index) })
}

func (f *form) addItem(selector string) {
	f.do(func() error { return f.d.AddFormGroupItem(selector) })
}

func (f *form) clearAndType(selector, value string) {
	f.do(func() error { return f.d.InputClearAndType(selector, value, false) })
}

func (f *form) clearAndTypeEmpty(selector, value string) {
	f.do(func() error { return f.d.InputClearAndType(selector, value, true) })
}

func (f *form) typeNth(selector string, index int, value string) {
	f.do(func() error { return f.d.TypeIntoNth(selector, index, value) })
}

func (f *form) typeFirstEmpty(selector, value string) {
	f.do(func() error { return f.d.TypeIntoFirstEmpty(selector, value) })
}

func (f *form) choose(selector, option string) {
	f.do(func() error { return f.d.ChooseComboboxOption(selector, option, false) })
}

func (f *form) chooseFixed(selector, option string) {
	f.do(func() error { return f.d.ChooseComboboxFixedOption(selector, option) })
}

func (f *form) result(action string) error {
	if f.err != nil {
		return fmt.Errorf("%s: %w", action, f.err)
	}
	return nil
}

func nameInput(kind string) string {
	return fmt.Sprintf(`ui5-input[aria-label="%s name"]`, kind)
}

func expand(label string) string {
	return fmt.Sprintf(`[aria-label="expand %s"]:visible`, label)
}

func testID(id string) string {
	return fmt.Sprintf(`[data-testid="%s"]`, id)
}

func inputTestID(format string, args ...interface{}) string {
	return fmt.Sprintf(`ui5-input[data-testid="%s"]`, fmt.Sprintf(format, args...))
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
