package doctypes

import "iter"

// Fragment is one incremental piece of a streamed reply. The set of
// implementations is closed: TextFragment and EmptyFragment.
type Fragment interface {
	Text() (string, bool)
	isFragment()
}

// TextFragment carries a non-empty text increment.
type TextFragment struct {
	Content string
}

// Text implements Fragment.
func (f TextFragment) Text() (string, bool) { return f.Content, f.Content != "" }
func (TextFragment) isFragment()            {}

// EmptyFragment is a fragment without usable text: safety-filtered candidates,
// thought-only parts, or responses with no candidates at all.
type EmptyFragment struct {
	Reason string
}

// Text implements Fragment.
func (EmptyFragment) Text() (string, bool) { return "", false }
func (EmptyFragment) isFragment()          {}

// FragmentStream yields fragments in delivery order. A non-nil error ends the
// stream and means the transport aborted.
type FragmentStream = iter.Seq2[Fragment, error]

// GenerationResult is the outcome of one generation call: either a stream of
// fragments or a user-facing error text. Errors are values here so the caller
// renders both shapes through the same path.
type GenerationResult struct {
	Stream          FragmentStream
	ErrorText       string
	ErrorKind       ErrorKind
	// StaleAttachment is set when the remote file referenced by the request
	// no longer exists, so the caller should drop the attachment.
	StaleAttachment bool
}

// IsError reports whether the result carries an error text instead of a stream.
func (r GenerationResult) IsError() bool {
	return r.Stream == nil
}

// StreamOf builds a FragmentStream from literal fragments. It is mostly useful
// for offline replies and tests.
func StreamOf(fragments ...Fragment) FragmentStream {
	return func(yield func(Fragment, error) bool) {
		for _, f := range fragments {
			if !yield(f, nil) {
				return
			}
		}
	}
}
