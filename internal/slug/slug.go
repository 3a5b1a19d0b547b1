package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"belleza-be/internal/apperror"
	"belleza-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxProbes bounds the numbered candidates tried before falling back to a
// random suffix.
const MaxProbes = 100

// fallbackBase is used when a title has no ASCII letters or digits left.
const fallbackBase = "item"

var (
	nonAlnumRegex = regexp.MustCompile(`[^a-z0-9]+`)
	validRegex    = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

var ErrProbeFailed = apperror.New(apperror.KindPersistence, "failed to allocate slug")

// Prober reports whether a slug is already taken by a record other than
// excludeID.
type Prober interface {
	SlugExists(ctx context.Context, slug string, excludeID string) (bool, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, slug string, excludeID string) (bool, error)

func (f ProberFunc) SlugExists(ctx context.Context, slug string, excludeID string) (bool, error) {
	return f(ctx, slug, excludeID)
}

// Normalize folds a title into a lowercase, hyphen-delimited ASCII base.
func Normalize(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	s := strings.ToLower(strings.TrimSpace(folded))
	s = nonAlnumRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return fallbackBase
	}
	return s
}

func IsValid(s string) bool {
	return validRegex.MatchString(s)
}

type Allocator struct {
	prober    Prober
	maxProbes int
	suffix    func() string
}

func NewAllocator(prober Prober) *Allocator {
	return &Allocator{
		prober:    prober,
		maxProbes: MaxProbes,
		suffix:    randomSuffix,
	}
}

// Allocate returns the lowest free candidate among base, base-1, base-2, ...
// After maxProbes taken candidates it appends a random hex suffix instead.
// The caller still has to persist the slug under a unique constraint.
func (a *Allocator) Allocate(ctx context.Context, title string, excludeID string) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "slug"),
		zap.String("method", "Allocate"),
	)

	base := Normalize(title)
	candidate := base

	for i := 0; i < a.maxProbes; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}

		taken, err := a.prober.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			log.Error("slug probe failed", zap.String("candidate", candidate), zap.Error(err))
			return "", apperror.Wrap(ErrProbeFailed, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	candidate = base + "-" + a.suffix()
	log.Warn("slug probe limit reached, using random suffix",
		zap.String("base", base),
		zap.String("slug", candidate),
	)
	return candidate, nil
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// MaxPersistRetries bounds how often a caller re-allocates after losing a
// unique-constraint race on insert or update.
const MaxPersistRetries = 3
