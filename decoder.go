package fragdec

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/brocaar/lorawan-fragdec/bitvec"
	"github.com/brocaar/lorawan-fragdec/fragstore"
	"github.com/brocaar/lorawan-fragdec/trimatrix"
)

// Decoder is the online Gaussian-elimination engine that reassembles an
// image from a stream of uncoded and XOR-coded fragments. A Decoder
// owns every bitmap, the triangular history matrix and its scratch
// buffers; it borrows the fragment Store across calls.
//
// A Decoder is not safe for concurrent use: Feed is synchronous and
// non-reentrant, matching the single session per instance the protocol
// assumes.
type Decoder struct {
	cfg Config
	log *logrus.Entry

	status Status

	lostFrmBm      bitvec.Vector // length M; bit i set iff slot i still missing
	lostFrameCount int           // popcount(lostFrmBm) while Uncoded; frozen once Coded

	matrixLineBm bitvec.Vector // length M; transient parity row scratch

	// Allocated lazily, once lostFrameCount freezes on the Uncoded ->
	// Coded transition, since their size depends on L.
	codedReady         bool
	lostFrmMatrix      trimatrix.Matrix
	filledLostFrmCount int
	matchedLostFrmBm0  bitvec.Vector
	matchedLostFrmBm1  bitvec.Vector

	xorRowDataBuf []byte
	rowDataBuf    []byte
}

// New allocates a Decoder for the given configuration, clears the first
// M*FragSize bytes of the block store and marks every uncoded slot as
// lost. status starts at StatusUncoded.
func New(cfg Config) (*Decoder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := &Decoder{
		cfg:           cfg,
		log:           cfg.logger(),
		status:        StatusUncoded,
		lostFrmBm:     bitvec.New(cfg.M),
		matrixLineBm:  bitvec.New(cfg.M),
		xorRowDataBuf: make([]byte, cfg.FragSize),
		rowDataBuf:    make([]byte, cfg.FragSize),
	}

	zero := make([]byte, cfg.FragSize)
	for i := 0; i < cfg.M; i++ {
		d.lostFrmBm.Set(i)
		if err := cfg.Store.Write(fragstore.SlotOffset(i, cfg.FragSize), zero); err != nil {
			return nil, errors.Wrapf(err, "fragdec: zeroing slot %d", i)
		}
	}
	d.lostFrameCount = cfg.M

	d.log.WithFields(logrus.Fields{
		"m":         cfg.M,
		"frag_size": cfg.FragSize,
		"t":         cfg.T,
	}).Debug("fragdec: decoder initialized")

	return d, nil
}

// Status returns the decoder's current lifecycle state.
func (d *Decoder) Status() Status {
	return d.status
}

// LostFrameCount returns the number of uncoded slots still missing.
// While Status() == StatusUncoded this is a live count; from the
// Uncoded -> Coded transition onward it is frozen at the loss count L,
// and stays at L after coded recovery completes. It is exposed purely
// for diagnostics — the reconstructed data lives in the Store, not here.
func (d *Decoder) LostFrameCount() int {
	return d.lostFrameCount
}

// FilledLostFrameCount returns the number of pivot rows the triangular
// history matrix currently holds, for diagnostics.
func (d *Decoder) FilledLostFrameCount() int {
	return d.filledLostFrmCount
}
