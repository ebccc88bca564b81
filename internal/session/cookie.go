package session

import (
	"net/http"
	"time"
)

// DefaultCookieName is the session cookie name when none is configured.
const DefaultCookieName = "auth-token"

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// normalize applies defaults for unset fields.
func (o CookieOptions) normalize() CookieOptions {
	if o.Name == "" {
		o.Name = DefaultCookieName
	}
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// Transport carries session tokens in an HttpOnly cookie.
type Transport struct {
	opts CookieOptions
	now  func() time.Time
}

// NewTransport returns a cookie transport. Secure should be true only when
// the server is reachable over HTTPS exclusively.
func NewTransport(name string, secure bool) *Transport {
	return NewTransportWithOptions(CookieOptions{Name: name, Secure: secure})
}

// NewTransportWithOptions returns a cookie transport using opts.
func NewTransportWithOptions(opts CookieOptions) *Transport {
	return &Transport{opts: opts.normalize(), now: time.Now}
}

// Name returns the cookie name.
func (t *Transport) Name() string {
	return t.opts.Name
}

// Attach issues the session cookie. Max-Age is the time left until
// expiresAt, so the cookie never outlives the token it carries.
func (t *Transport) Attach(w http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(t.now()).Seconds())
	if maxAge <= 0 {
		// Already expired; net/http renders negative MaxAge as Max-Age=0.
		maxAge = -1
	}

	http.SetCookie(w, &http.Cookie{
		Name:     t.opts.Name,
		Value:    token,
		Path:     t.opts.Path,
		Domain:   t.opts.Domain,
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   t.opts.Secure,
		SameSite: t.opts.SameSite,
	})
}

// Clear instructs the client to drop the session cookie.
func (t *Transport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.opts.Name,
		Value:    "",
		Path:     t.opts.Path,
		Domain:   t.opts.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.opts.Secure,
		SameSite: t.opts.SameSite,
	})
}

// Extract returns the session token carried by r. An empty cookie counts as
// absent.
func (t *Transport) Extract(r *http.Request) (string, bool) {
	c, err := r.Cookie(t.opts.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
