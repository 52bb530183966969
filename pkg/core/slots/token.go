package slots

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
)

// DateLayout is the civil date format carried by claimed tokens, e.g. "Mar 5, 2024"
const DateLayout = "Jan 2, 2006"

const (
	unclaimedFields = 6
	claimedFields   = 9
	dateFields      = 3
	rangeSeparator  = "-"
)

// ErrMalformedToken is returned when a stored slot token cannot be decoded
var ErrMalformedToken = fmt.Errorf("%w: malformed slot token", clock.ErrFormat)

// Token is one increment of one event. An unclaimed token sits in the event's
// pool; a claimed token carries the event date and belongs to exactly one user.
//
// Tokens are values. Claim and Release return copies.
type Token struct {
	EventID uuid.UUID
	Date    time.Time
	Window  Window
}

// CivilDate truncates t to midnight UTC on its calendar day
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Claimed reports whether the token carries a date
func (t Token) Claimed() bool {
	return !t.Date.IsZero()
}

// Claim returns a copy of the token stamped with the event date
func (t Token) Claim(date time.Time) Token {
	t.Date = CivilDate(date)
	return t
}

// Release returns a copy of the token without its date
func (t Token) Release() Token {
	t.Date = time.Time{}
	return t
}

// Equal compares tokens field by field
func (t Token) Equal(other Token) bool {
	return t.EventID == other.EventID &&
		t.Window == other.Window &&
		t.Date.Equal(other.Date)
}

// SameSlot reports whether two tokens refer to the same increment of the same
// event, ignoring whether either is claimed
func (t Token) SameSlot(other Token) bool {
	return t.EventID == other.EventID && t.Window == other.Window
}

// String returns the storage form of the token
func (t Token) String() string {
	unclaimed := fmt.Sprintf("%s %s", t.EventID, t.Window.Display())
	if !t.Claimed() {
		return unclaimed
	}
	return t.Date.Format(DateLayout) + " " + unclaimed
}

// MarshalText encodes the token in its storage form, so JSON carries plain strings
func (t Token) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes either storage form
func (t *Token) UnmarshalText(text []byte) error {
	parsed, err := ParseToken(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseToken decodes a claimed or unclaimed token, picking the form by field count
func ParseToken(s string) (Token, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case unclaimedFields:
		return parseRange(fields, s)
	case claimedFields:
		date, err := time.Parse(DateLayout, strings.Join(fields[:dateFields], " "))
		if err != nil {
			return Token{}, fmt.Errorf("%w %q: bad date: %v", ErrMalformedToken, s, err)
		}
		tok, err := parseRange(fields[dateFields:], s)
		if err != nil {
			return Token{}, err
		}
		return tok.Claim(date), nil
	default:
		return Token{}, fmt.Errorf("%w %q: expected %d or %d fields, got %d",
			ErrMalformedToken, s, unclaimedFields, claimedFields, len(fields))
	}
}

// ParseUnclaimed decodes a token that must be in the event-pool form
func ParseUnclaimed(s string) (Token, error) {
	tok, err := ParseToken(s)
	if err != nil {
		return Token{}, err
	}
	if tok.Claimed() {
		return Token{}, fmt.Errorf("%w %q: expected unclaimed form", ErrMalformedToken, s)
	}
	return tok, nil
}

// ParseClaimed decodes a token that must carry a date
func ParseClaimed(s string) (Token, error) {
	tok, err := ParseToken(s)
	if err != nil {
		return Token{}, err
	}
	if !tok.Claimed() {
		return Token{}, fmt.Errorf("%w %q: expected claimed form", ErrMalformedToken, s)
	}
	return tok, nil
}

// DecodeAll decodes a stored token list. Single-field entries are seed
// placeholders left by older records and are skipped.
func DecodeAll(stored []string) ([]Token, error) {
	tokens := make([]Token, 0, len(stored))
	for i, s := range stored {
		if len(strings.Fields(s)) <= 1 {
			continue
		}
		tok, err := ParseToken(s)
		if err != nil {
			return nil, fmt.Errorf("failed to decode token %d: %w", i, err)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// EncodeAll returns the storage form of each token
func EncodeAll(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.String())
	}
	return out
}

// fields: <id> <h:MM> <A.M.|P.M.> - <h:MM> <A.M.|P.M.>
func parseRange(fields []string, original string) (Token, error) {
	id, err := uuid.Parse(fields[0])
	if err != nil {
		return Token{}, fmt.Errorf("%w %q: bad event id: %v", ErrMalformedToken, original, err)
	}
	if fields[3] != rangeSeparator {
		return Token{}, fmt.Errorf("%w %q: missing range separator", ErrMalformedToken, original)
	}

	start, err := clock.ParseDisplay(fields[1] + " " + fields[2])
	if err != nil {
		return Token{}, fmt.Errorf("%w %q: bad start: %v", ErrMalformedToken, original, err)
	}
	end, err := clock.ParseDisplay(fields[4] + " " + fields[5])
	if err != nil {
		return Token{}, fmt.Errorf("%w %q: bad end: %v", ErrMalformedToken, original, err)
	}

	return Token{EventID: id, Window: Window{Start: start, End: end}}, nil
}
