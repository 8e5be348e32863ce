package browser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"
)

// TestSmoke_NavigationCrawl verifies the public and signed-in pages load.
func TestSmoke_NavigationCrawl(t *testing.T) {
	app := newTestApp(t)

	routes := []struct {
		path       string
		signedIn   bool
		wantStatus int
	}{
		{path: "/", wantStatus: 200},
		{path: "/?sport=tennis&sort=price", wantStatus: 200},
		{path: "/coaches/c1", wantStatus: 200},
		{path: "/coaches/nobody", wantStatus: 404},
		{path: "/login", wantStatus: 200},
		{path: "/signup", wantStatus: 200},
		{path: "/verify?token=bogus", wantStatus: 400},
		{path: "/dashboard", signedIn: true, wantStatus: 200},
	}

	for _, route := range routes {
		t.Run(fmt.Sprintf("%s_signed_in_%v", route.path, route.signedIn), func(t *testing.T) {
			page := app.newPage(t)
			if route.signedIn {
				app.login(t, page, adminEmail, adminPassword)
			}
			resp, err := page.Goto(app.BaseURL + route.path)
			if err != nil {
				t.Fatalf("failed to navigate to %s: %v", route.path, err)
			}
			if resp.Status() != route.wantStatus {
				t.Errorf("%s: got status %d, want %d", route.path, resp.Status(), route.wantStatus)
			}
		})
	}
}

// TestSmoke_NoConsoleErrors verifies pages load without JavaScript errors.
func TestSmoke_NoConsoleErrors(t *testing.T) {
	app := newTestApp(t)
	page := app.newPage(t)

	var errors []string
	page.On("console", func(msg playwright.ConsoleMessage) {
		if msg.Type() == "error" {
			errors = append(errors, msg.Text())
		}
	})

	app.login(t, page, adminEmail, adminPassword)
	for _, path := range []string{"/", "/coaches/c1", "/dashboard"} {
		app.goTo(t, page, path)
		page.WaitForTimeout(300)
	}
	if len(errors) > 0 {
		t.Errorf("console errors found: %v", errors)
	}
}

// TestSearch_OpensCoachProfile follows a search result to the profile page.
func TestSearch_OpensCoachProfile(t *testing.T) {
	app := newTestApp(t)
	page := app.newPage(t)

	app.goTo(t, page, "/")
	if _, err := page.Locator("select[name=sport]").SelectOption(playwright.SelectOptionValues{Values: &[]string{"tennis"}}); err != nil {
		t.Fatalf("select sport: %v", err)
	}
	if err := page.Locator("form.search button[type=submit]").Click(); err != nil {
		t.Fatalf("submit search: %v", err)
	}
	if err := page.Locator("a[href='/coaches/c1']").Click(); err != nil {
		t.Fatalf("open coach: %v", err)
	}
	if err := page.WaitForURL(app.BaseURL + "/coaches/c1"); err != nil {
		t.Fatalf("did not reach profile: %v", err)
	}
	text, err := page.Locator("ul.services").InnerText()
	if err != nil {
		t.Fatalf("read services: %v", err)
	}
	if !strings.Contains(text, "Session s1") || !strings.Contains(text, "$50.00") {
		t.Errorf("services = %q", text)
	}
}

// TestSignUp_ConfirmAndSignIn walks a new student from signup to the dashboard.
func TestSignUp_ConfirmAndSignIn(t *testing.T) {
	app := newTestApp(t)
	page := app.newPage(t)

	app.goTo(t, page, "/signup")
	fill(t, page, "input[name=full_name]", "Sam Student")
	fill(t, page, "input[name=email]", "sam@example.com")
	fill(t, page, "input[name=password]", "a-long-password-1")
	if err := page.Locator("form.auth button[type=submit]").Click(); err != nil {
		t.Fatalf("submit signup: %v", err)
	}
	notice, err := page.Locator("p.notice").InnerText()
	if err != nil {
		t.Fatalf("read notice: %v", err)
	}
	if !strings.Contains(notice, "Check your inbox") {
		t.Errorf("notice = %q", notice)
	}

	resp, err := page.Goto(app.lastVerifyLink(t))
	if err != nil {
		t.Fatalf("follow verify link: %v", err)
	}
	if resp.Status() != 200 {
		t.Fatalf("verify status = %d", resp.Status())
	}

	app.login(t, page, "sam@example.com", "a-long-password-1")
	heading, err := page.Locator("h2", playwright.PageLocatorOptions{HasText: "Awaiting your review"}).Count()
	if err != nil || heading != 1 {
		t.Errorf("student dashboard not shown (count=%d, err=%v)", heading, err)
	}

	if err := page.Locator("form[action='/logout'] button").Click(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	app.goTo(t, page, "/")
	resp, err = page.Goto(app.BaseURL + "/dashboard")
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if !strings.HasSuffix(page.URL(), "/login") {
		t.Errorf("after logout dashboard landed on %s (status %d)", page.URL(), resp.Status())
	}
}
