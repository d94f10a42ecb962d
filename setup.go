package fragdec

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/brocaar/lorawan-fragdec/applayer/fragmentation"
	"github.com/brocaar/lorawan-fragdec/fragstore"
)

// ConfigFromSetupReq builds a Config from a FragSessionSetupReq command
// payload, the standardized over-the-air handshake that precedes a
// fragmentation session (CID 0x02). The payload carries M (NbFrag) and
// FragSize directly; it carries no loss tolerance, so the caller
// supplies T, the Store and an optional Logger the same way it would
// for a hand-assembled Config.
//
// The FragSession fields (FragIndex, McGroupBitMask) and Control fields
// (FragmentationMatrix, BlockAckDelay) address multicast session bookkeeping
// and fragmentation-algorithm selection that are out of scope here; a
// non-zero FragmentationMatrix selects a coding scheme other than the
// one this decoder implements and is rejected.
func ConfigFromSetupReq(req fragmentation.FragSessionSetupReqPayload, t int, store fragstore.Store, logger *logrus.Entry) (Config, error) {
	if !req.IsSupportedMatrix() {
		return Config{}, errors.Errorf("fragdec: unsupported fragmentation matrix %d", req.Control.FragmentationMatrix)
	}

	return Config{
		M:        int(req.NbFrag),
		FragSize: int(req.FragSize),
		T:        t,
		Store:    store,
		Logger:   logger,
	}, nil
}

// FeedDataFragment decodes a DataFragment command payload and applies
// it to d. The command's IndexAndN.N is the protocol's frame counter,
// used directly as Feed's frameCounter argument.
func FeedDataFragment(d *Decoder, payload fragmentation.DataFragmentPayload) (Outcome, error) {
	return d.Feed(int(payload.IndexAndN.N), payload.Payload)
}
