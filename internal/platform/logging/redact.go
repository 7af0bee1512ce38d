package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// credentialFields hold secrets for the service and the payment gateway.
var credentialFields = []string{
	"password", "secret", "token",
	"apiKey", "apikey", "api_key", "APIKey",
	"accessToken", "access_token", "refreshToken", "refresh_token",
	"credential", "credentials",
	"authorization", "auth", "bearer", "cookie", "session",
	"privateKey", "private_key", "secretKey", "secret_key",
}

// paymentFields are card and account details a gateway reply may echo.
var paymentFields = []string{
	"card", "card_number", "cardNumber", "cvv", "cvc", "pan",
	"account_number", "accountNumber", "iban",
}

// Value patterns. There is deliberately no bare digit-run pattern: ISBNs,
// patron IDs and book IDs are all digit runs and must stay readable.
var (
	jwtPattern       = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)
	bearerPattern    = regexp.MustCompile(`(?i)^bearer\s+.+$`)
	basicAuthPattern = regexp.MustCompile(`(?i)^basic\s+.+$`)
	// Gateway keys look like sk_live_... or sk_test_...
	gatewayKeyPattern = regexp.MustCompile(`^sk_(live|test)_[A-Za-z0-9]+$`)
)

// DefaultRedactOptions returns the masq options applied to every handler
// built by New. Extend with NewReplaceAttr(extra...).
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(credentialFields)+len(paymentFields)+8)

	for _, name := range credentialFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	for _, name := range paymentFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	return append(opts,
		masq.WithTag("secret"),
		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),
		masq.WithRegex(jwtPattern),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(basicAuthPattern),
		masq.WithRegex(gatewayKeyPattern),
	)
}

// NewReplaceAttr creates a slog ReplaceAttr func that redacts with
// DefaultRedactOptions plus opts.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
