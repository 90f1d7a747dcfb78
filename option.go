package neowire

// options holds the configuration for a Decoder.
type options struct {
	// maxPayloadSize is the largest declared payload length the decoder
	// accepts before failing with ErrOversizedPayload.
	maxPayloadSize int
	// lenientLength accepts non-minimal CompactSize length prefixes.
	lenientLength bool
}

// Option is a function that configures decoder options.
type Option func(*options)

// MaxPayloadSizeOption returns an Option that sets the largest payload the
// decoder will accept. Values outside (0, MaxPayloadSize] fall back to
// MaxPayloadSize, so a decoder can never accept a frame the protocol forbids.
func MaxPayloadSizeOption(size int) Option {
	return func(o *options) {
		o.maxPayloadSize = size
	}
}

// LenientLengthOption returns an Option that accepts non-minimal CompactSize
// length prefixes (e.g. 0xFD 0x05 0x00 for 5). By default these are rejected
// as ErrNonMinimalLength to avoid wire malleability; use this when
// interoperating with peers whose tolerance is unverified.
func LenientLengthOption() Option {
	return func(o *options) {
		o.lenientLength = true
	}
}

// checkOptions sets default values for decoder options.
func checkOptions(opts *options) {
	if opts.maxPayloadSize <= 0 || opts.maxPayloadSize > MaxPayloadSize {
		opts.maxPayloadSize = MaxPayloadSize
	}
}
