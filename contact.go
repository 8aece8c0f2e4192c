package devscribe

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/devscribe/internal/logger"
	"github.com/eringen/devscribe/views"
)

const (
	contactSentNotice = "Message Sent! Thank you for your message. We'll get back to you soon."
	subscribedNotice  = "Thank you for subscribing to our newsletter."
)

// addFlash queues a notice for the next page the visitor loads.
func addFlash(c echo.Context, msg string) error {
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	sess.AddFlash(msg)
	return sess.Save(c.Request(), c.Response())
}

// takeFlashes returns and clears the queued notices. It must run before the
// response is written.
func takeFlashes(c echo.Context) []string {
	sess, _ := session.Get(sessionName, c)
	if sess == nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	var out []string
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	_ = sess.Save(c.Request(), c.Response())
	return out
}

func (a *App) handleAbout(c echo.Context) error {
	p, err := a.clientPrefs(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.About(a.page(c, p, views.PageMeta{
		Title: p.Translate("about"),
		URL:   views.BuildURL(a.Config.URL, "about"),
	})))
}

func (a *App) contactPage(c echo.Context) (views.ContactData, error) {
	p, err := a.clientPrefs(c)
	if err != nil {
		return views.ContactData{}, err
	}
	return views.ContactData{Page: a.page(c, p, views.PageMeta{
		Title: p.Translate("contact"),
		URL:   views.BuildURL(a.Config.URL, "contact"),
	})}, nil
}

func (a *App) handleContact(c echo.Context) error {
	d, err := a.contactPage(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Contact(d))
}

// handleContactSubmit acknowledges a contact message. Messages are not
// stored or forwarded.
func (a *App) handleContactSubmit(c echo.Context) error {
	form := views.ContactForm{
		Name:    strings.TrimSpace(c.FormValue("name")),
		Email:   strings.TrimSpace(c.FormValue("email")),
		Subject: strings.TrimSpace(c.FormValue("subject")),
		Message: strings.TrimSpace(c.FormValue("message")),
	}
	if msg := validateContact(form); msg != "" {
		d, err := a.contactPage(c)
		if err != nil {
			return err
		}
		d.Form, d.Error = form, msg
		return RenderStatus(c, http.StatusBadRequest, a.Views.Contact(d))
	}
	a.Log.Info("contact message received",
		logger.String("client", ClientID(c)),
		logger.Int("length", len(form.Message)))
	if err := addFlash(c, contactSentNotice); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/contact/")
}

func validateContact(f views.ContactForm) string {
	if f.Name == "" || f.Email == "" || f.Subject == "" || f.Message == "" {
		return "Please fill in every field."
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return "Please enter a valid email address."
	}
	return ""
}

// handleSubscribe acknowledges a newsletter signup from the footer form.
func (a *App) handleSubscribe(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	if _, err := mail.ParseAddress(email); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid email address")
	}
	if err := addFlash(c, subscribedNotice); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, safeNext(c.FormValue("next"), "/"))
}
