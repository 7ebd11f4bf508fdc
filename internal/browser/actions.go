package browser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/moolen/meshprobe/internal/console"
)

var _ console.Driver = (*Session)(nil)

func exactText(text string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*` + regexp.QuoteMeta(text) + `\s*$`)
}

func (s *Session) timeout() *float64 {
	if s.opts.Timeout <= 0 {
		return playwright.Float(float64(optionTimeout.Milliseconds()))
	}
	return playwright.Float(float64(s.opts.Timeout.Milliseconds()))
}

// Visit navigates to url, waits for the load event and lets the console
// settle for NavigationWait.
func (s *Session) Visit(url string) error {
	s.logger.Debug("visit %s", url)
	if _, err := s.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if s.opts.NavigationWait > 0 {
		time.Sleep(s.opts.NavigationWait)
	}
	return nil
}

// pick returns the first match of loc, or the first match with an empty value
// when emptyOnly is set.
func (s *Session) pick(loc playwright.Locator, emptyOnly bool) (playwright.Locator, error) {
	if err := loc.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: s.timeout(),
	}); err != nil {
		return nil, err
	}
	if !emptyOnly {
		return loc.First(), nil
	}

	all, err := loc.All()
	if err != nil {
		return nil, err
	}
	for _, candidate := range all {
		value, err := candidate.InputValue()
		if err != nil {
			return nil, err
		}
		if value == "" {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("all %d inputs already have a value", len(all))
}

func typeInto(input playwright.Locator, value string, clear bool) error {
	if err := input.Click(playwright.LocatorClickOptions{Force: playwright.Bool(true)}); err != nil {
		return err
	}
	if clear {
		if err := input.Clear(playwright.LocatorClearOptions{Force: playwright.Bool(true)}); err != nil {
			return err
		}
	}
	return input.PressSequentially(value)
}

// ChooseComboboxOption types option into the visible ui5-combobox matching
// selector and clicks the list item with exactly that text.
func (s *Session) ChooseComboboxOption(selector, option string, filterFilled bool) error {
	s.logger.Debug("choose %q in combobox %s", option, selector)
	inputs := s.Page.Locator("ui5-combobox" + selector + ":visible").Locator("input:visible")
	input, err := s.pick(inputs, filterFilled)
	if err != nil {
		return fmt.Errorf("combobox %s not found: %w", selector, err)
	}
	if err := typeInto(input, option, true); err != nil {
		return fmt.Errorf("failed to type into combobox %s: %w", selector, err)
	}
	time.Sleep(comboboxSettle)
	return s.clickOption(option)
}

// ChooseComboboxFixedOption opens a non-editable combobox through its
// dropdown icon and picks option.
func (s *Session) ChooseComboboxFixedOption(selector, option string) error {
	s.logger.Debug("choose fixed %q in combobox %s", option, selector)
	icon := s.Page.Locator("ui5-combobox" + selector + ":visible").
		Locator(`ui5-icon[accessible-name="Select Options"]:visible`).First()
	if err := icon.Click(playwright.LocatorClickOptions{Force: playwright.Bool(true)}); err != nil {
		return fmt.Errorf("failed to open combobox %s: %w", selector, err)
	}
	time.Sleep(comboboxSettle)
	return s.clickOption(option)
}

func (s *Session) clickOption(option string) error {
	item := s.Page.Locator("ui5-li:visible").
		Filter(playwright.LocatorFilterOptions{HasText: exactText(option)}).
		First().
		Locator("li")
	if err := item.Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(true),
		Timeout: playwright.Float(float64(optionTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("option %q not found: %w", option, err)
	}
	return nil
}

// InputClearAndType replaces the value of the input under selector. With
// filterFilled only inputs that are still empty are considered.
func (s *Session) InputClearAndType(selector, value string, filterFilled bool) error {
	s.logger.Debug("type %q into %s", value, selector)
	input, err := s.pick(s.Page.Locator(selector).Locator("input:visible"), filterFilled)
	if err != nil {
		return fmt.Errorf("input %s not found: %w", selector, err)
	}
	if err := typeInto(input, value, true); err != nil {
		return fmt.Errorf("failed to type into %s: %w", selector, err)
	}
	return nil
}

// TypeIntoNth appends value to the index-th input under selector.
func (s *Session) TypeIntoNth(selector string, index int, value string) error {
	s.logger.Debug("type %q into %s #%d", value, selector, index)
	if err := typeInto(s.Page.Locator(selector).Locator("input").Nth(index), value, false); err != nil {
		return fmt.Errorf("failed to type into %s #%d: %w", selector, index, err)
	}
	return nil
}

// TypeIntoFirstEmpty types value into the first empty input under selector.
func (s *Session) TypeIntoFirstEmpty(selector, value string) error {
	s.logger.Debug("type %q into first empty %s", value, selector)
	input, err := s.pick(s.Page.Locator(selector).Locator("input"), true)
	if err != nil {
		return fmt.Errorf("no empty input under %s: %w", selector, err)
	}
	if err := typeInto(input, value, false); err != nil {
		return fmt.Errorf("failed to type into %s: %w", selector, err)
	}
	return nil
}

// AddFormGroupItem clicks the Add button of the form group header matching selector.
func (s *Session) AddFormGroupItem(selector string) error {
	s.logger.Debug("add item to %s", selector)
	add := s.Page.Locator(selector).First().
		GetByText("Add", playwright.LocatorGetByTextOptions{Exact: playwright.Bool(true)}).First()
	if err := add.Click(playwright.LocatorClickOptions{Force: playwright.Bool(true)}); err != nil {
		return fmt.Errorf("failed to add item to %s: %w", selector, err)
	}
	return nil
}

// Click clicks the first element matching selector.
func (s *Session) Click(selector string) error {
	return s.ClickNth(selector, 0)
}

func (s *Session) ClickNth(selector string, index int) error {
	s.logger.Debug("click %s #%d", selector, index)
	if err := s.Page.Locator(selector).Nth(index).Click(playwright.LocatorClickOptions{
		Force: playwright.Bool(true),
	}); err != nil {
		return fmt.Errorf("failed to click %s #%d: %w", selector, index, err)
	}
	return nil
}

// ClickButton clicks the visible button labelled label, preferring buttons of
// an open dialog over the page header.
func (s *Session) ClickButton(label string) error {
	s.logger.Debug("click button %q", label)
	match := playwright.LocatorFilterOptions{HasText: exactText(label)}

	inDialog := s.Page.Locator("ui5-dialog[open] ui5-button:visible").Filter(match)
	if n, err := inDialog.Count(); err == nil && n > 0 {
		if err := inDialog.First().Click(); err != nil {
			return fmt.Errorf("failed to click dialog button %q: %w", label, err)
		}
		return nil
	}

	if err := s.Page.Locator("ui5-button:visible").Filter(match).First().Click(); err != nil {
		return fmt.Errorf("failed to click button %q: %w", label, err)
	}
	return nil
}

// ClickCreateButton opens the create dialog, or submits it when it is open.
func (s *Session) ClickCreateButton() error {
	return s.ClickButton("Create")
}

func (s *Session) ClickSaveButton() error {
	return s.ClickButton("Save")
}

func (s *Session) ClickEditTab() error {
	return s.clickTab("Edit")
}

func (s *Session) ClickViewTab() error {
	return s.clickTab("View")
}

func (s *Session) clickTab(text string) error {
	s.logger.Debug("open tab %s", text)
	tab := s.Page.Locator(fmt.Sprintf(`ui5-tabcontainer [text="%s"]`, text)).First()
	if err := tab.Click(playwright.LocatorClickOptions{Force: playwright.Bool(true)}); err != nil {
		return fmt.Errorf("failed to open tab %s: %w", text, err)
	}
	return nil
}

// ClickText clicks the first element containing text.
func (s *Session) ClickText(text string) error {
	s.logger.Debug("click text %q", text)
	if err := s.Page.GetByText(text).First().Click(playwright.LocatorClickOptions{
		Timeout: s.timeout(),
	}); err != nil {
		return fmt.Errorf("failed to click %q: %w", text, err)
	}
	return nil
}

// UploadFile sets path on the file input matching selector.
func (s *Session) UploadFile(selector, path string) error {
	s.logger.Debug("upload %s into %s", path, selector)
	if err := s.Page.Locator(selector).First().SetInputFiles(path); err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return nil
}

// NavigateBackTo follows the breadcrumb link whose href contains resourceURL
// and whose text contains resourceName.
func (s *Session) NavigateBackTo(resourceURL, resourceName string) error {
	link := s.Page.Locator(fmt.Sprintf(`ui5-breadcrumbs ui5-link[href*="%s"]`, resourceURL)).
		Filter(playwright.LocatorFilterOptions{HasText: resourceName}).
		First().
		Locator(fmt.Sprintf(`a[href*="%s"]`, resourceURL))
	if err := link.Click(playwright.LocatorClickOptions{Force: playwright.Bool(true)}); err != nil {
		return fmt.Errorf("failed to navigate back to %s: %w", resourceName, err)
	}
	return nil
}

// InspectList goes back to the list of resource (e.g. "Gateways"), searches
// for name and expects it to be listed.
func (s *Session) InspectList(resource, name string) error {
	resourceURL := strings.ToLower(strings.ReplaceAll(resource, " ", ""))
	if err := s.NavigateBackTo(resourceURL, resource); err != nil {
		return err
	}
	if err := s.Click(`ui5-button[aria-label="open-search"]:visible`); err != nil {
		return err
	}
	search := s.Page.Locator(`ui5-combobox[placeholder="Search"]`).Locator("input").First()
	if err := typeInto(search, name, false); err != nil {
		return fmt.Errorf("failed to search for %s: %w", name, err)
	}
	return s.ExpectVisibleText(name)
}
