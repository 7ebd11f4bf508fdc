package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// ExpectVisibleText waits until an element containing text is visible.
func (s *Session) ExpectVisibleText(text string) error {
	if err := s.Page.GetByText(text).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: s.timeout(),
	}); err != nil {
		return fmt.Errorf("text %q is not visible: %w", text, err)
	}
	return nil
}

// ExpectNoText waits until no element contains text.
func (s *Session) ExpectNoText(text string) error {
	if err := s.Page.GetByText(text).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateDetached,
		Timeout: s.timeout(),
	}); err != nil {
		return fmt.Errorf("text %q is still present: %w", text, err)
	}
	return nil
}

// ExpectTextIn checks that the element matching selector contains every text.
func (s *Session) ExpectTextIn(selector string, texts ...string) error {
	for _, text := range texts {
		match := s.Page.Locator(selector).Filter(playwright.LocatorFilterOptions{HasText: text}).First()
		if err := match.WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateAttached,
			Timeout: s.timeout(),
		}); err != nil {
			return fmt.Errorf("%s does not contain %q: %w", selector, text, err)
		}
	}
	return nil
}

// ExpectStatusLabel waits for a status tag showing status.
func (s *Session) ExpectStatusLabel(status string) error {
	tag := s.Page.Locator("ui5-tag:visible").Filter(playwright.LocatorFilterOptions{HasText: exactText(status)}).First()
	if err := tag.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: s.timeout(),
	}); err != nil {
		return fmt.Errorf("status %q not shown: %w", status, err)
	}
	return nil
}

// ExpectTableRowWithLink waits for a table row linking to a URL containing href.
func (s *Session) ExpectTableRowWithLink(href string) error {
	row := s.Page.Locator(fmt.Sprintf(`ui5-table-row a[href*="%[1]s"], tr a[href*="%[1]s"]`, href)).First()
	if err := row.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: s.timeout(),
	}); err != nil {
		return fmt.Errorf("no table row links to %s: %w", href, err)
	}
	return nil
}
