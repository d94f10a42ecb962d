package fragdec

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/brocaar/lorawan-fragdec/bitvec"
	"github.com/brocaar/lorawan-fragdec/fragstore"
	"github.com/brocaar/lorawan-fragdec/parityrow"
	"github.com/brocaar/lorawan-fragdec/trimatrix"
)

// xorBytes XORs src into dst in place; both must have equal length.
func xorBytes(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// Feed processes one received fragment. frameCounter is the protocol's
// 1-based frame counter (1..M for uncoded, >M for coded). Once Status()
// is StatusDone, Feed is an idempotent no-op returning Completed.
func (d *Decoder) Feed(frameCounter int, payload []byte) (Outcome, error) {
	if d.status == StatusDone {
		return Completed, nil
	}

	if len(payload) != d.cfg.FragSize {
		d.log.WithFields(logrus.Fields{
			"frame_counter": frameCounter,
			"len":           len(payload),
			"frag_size":     d.cfg.FragSize,
		}).Warn("fragdec: dropping fragment with unexpected length")
		return InvalidFrame, nil
	}

	if d.status == StatusUncoded && frameCounter >= 1 && frameCounter <= d.cfg.M {
		return d.absorbUncoded(frameCounter, payload)
	}

	return d.absorbCoded(frameCounter, payload)
}

// absorbUncoded implements spec §4.6.1.
func (d *Decoder) absorbUncoded(frameCounter int, payload []byte) (Outcome, error) {
	i := frameCounter - 1

	if d.lostFrmBm.Test(i) {
		d.lostFrmBm.Clear(i)
		d.lostFrameCount--
	}

	if err := d.cfg.Store.Write(fragstore.SlotOffset(i, d.cfg.FragSize), payload); err != nil {
		return Ongoing, errors.Wrapf(err, "fragdec: writing uncoded slot %d", i)
	}

	if d.lostFrameCount == 0 {
		d.status = StatusDone
		d.log.Info("fragdec: all uncoded fragments received, decoding complete")
		return Completed, nil
	}

	return Ongoing, nil
}

// absorbCoded implements spec §4.6.2 and §4.6.3. It also handles the
// state-machine's Uncoded -> Coded transition on first entry.
func (d *Decoder) absorbCoded(frameCounter int, payload []byte) (Outcome, error) {
	if d.status == StatusUncoded {
		d.status = StatusCoded
		d.log.WithField("lost_frame_count", d.lostFrameCount).Info("fragdec: entering coded phase")
	}

	if d.lostFrameCount > d.cfg.T {
		d.log.WithFields(logrus.Fields{
			"lost_frame_count": d.lostFrameCount,
			"t":                d.cfg.T,
		}).Error("fragdec: too many lost fragments to recover")
		return TooManyLost, nil
	}

	l := d.lostFrameCount
	if !d.codedReady {
		d.lostFrmMatrix = trimatrix.New(l)
		d.matchedLostFrmBm0 = bitvec.New(l)
		d.matchedLostFrmBm1 = bitvec.New(l)
		d.codedReady = true
	}

	// Step A: compute residue against already-received uncoded frames.
	d.matchedLostFrmBm0.ClearRegion(l)
	d.matchedLostFrmBm1.ClearRegion(l)
	copy(d.xorRowDataBuf, payload)

	if frameCounter <= d.cfg.M {
		// A late/duplicate uncoded-numbered fragment arriving during the
		// coded phase: its information is exactly slot frameCounter-1,
		// a singleton support — there is no n=frameCounter-M to feed the
		// PRBS generator, so this bypasses parityrow entirely rather
		// than calling it with a non-positive serial.
		d.matrixLineBm.ClearRegion(d.cfg.M)
		d.matrixLineBm.Set(frameCounter - 1)
	} else {
		parityrow.Row(d.cfg.M, frameCounter-d.cfg.M, d.matrixLineBm)
	}

	unmatched := 0
	for i := 0; i < d.cfg.M; i++ {
		if !d.matrixLineBm.Test(i) {
			continue
		}
		if d.lostFrmBm.Test(i) {
			k := d.lostFrmBm.PopcountPrefix(i) - 1
			d.matchedLostFrmBm0.Set(k)
			unmatched++
		} else {
			if err := d.cfg.Store.Read(fragstore.SlotOffset(i, d.cfg.FragSize), d.rowDataBuf); err != nil {
				return Ongoing, errors.Wrapf(err, "fragdec: reading known slot %d", i)
			}
			xorBytes(d.xorRowDataBuf, d.rowDataBuf)
		}
	}

	if unmatched == 0 {
		return Ongoing, nil
	}

	// Step B: reduce the residue against the history matrix.
	stored, err := d.reduceResidue(l)
	if err != nil {
		return Ongoing, err
	}
	if stored {
		d.filledLostFrmCount++
	}

	// Step C: check completion.
	if d.filledLostFrmCount == l {
		if l >= 2 {
			if err := d.backSubstitute(l); err != nil {
				return Ongoing, err
			}
		}
		d.status = StatusDone
		d.log.Info("fragdec: back-substitution complete, decoding done")
		return Completed, nil
	}

	return Ongoing, nil
}

// reduceResidue implements spec §4.6.3 Step B. It returns stored=true if
// a new pivot row was written.
func (d *Decoder) reduceResidue(l int) (stored bool, err error) {
	for iter := 0; iter <= l; iter++ {
		lostFrameIndex, ok := d.matchedLostFrmBm0.FindFirstSet(l)
		if !ok {
			return false, nil
		}

		frameIndex, ok := d.lostFrmBm.FindNthSet(lostFrameIndex+1, d.cfg.M)
		if !ok {
			panic("fragdec: lost-frame coordinate does not map to a lost global index")
		}

		if !d.lostFrmMatrix.HasPivot(lostFrameIndex) {
			d.lostFrmMatrix.WriteLine(lostFrameIndex, d.matchedLostFrmBm0)
			if err := d.cfg.Store.Write(fragstore.SlotOffset(frameIndex, d.cfg.FragSize), d.xorRowDataBuf); err != nil {
				return false, errors.Wrapf(err, "fragdec: storing new pivot at slot %d", frameIndex)
			}
			return true, nil
		}

		d.lostFrmMatrix.ReadLine(lostFrameIndex, d.matchedLostFrmBm1)
		bitvec.XorInPlace(d.matchedLostFrmBm0, d.matchedLostFrmBm1, l)
		if err := d.cfg.Store.Read(fragstore.SlotOffset(frameIndex, d.cfg.FragSize), d.rowDataBuf); err != nil {
			return false, errors.Wrapf(err, "fragdec: reading pivot slot %d", frameIndex)
		}
		xorBytes(d.xorRowDataBuf, d.rowDataBuf)

		if d.matchedLostFrmBm0.IsRegionCleared(l) {
			return false, nil
		}
	}

	panic("fragdec: residue reduction did not terminate within L iterations")
}

// backSubstitute implements spec §4.6.3 Step D.
func (d *Decoder) backSubstitute(l int) error {
	for i := l - 2; i >= 0; i-- {
		frameIndex, ok := d.lostFrmBm.FindNthSet(i+1, d.cfg.M)
		if !ok {
			panic("fragdec: back-substitution row does not map to a lost global index")
		}

		if err := d.cfg.Store.Read(fragstore.SlotOffset(frameIndex, d.cfg.FragSize), d.xorRowDataBuf); err != nil {
			return errors.Wrapf(err, "fragdec: back-substitution read of slot %d", frameIndex)
		}
		d.lostFrmMatrix.ReadLine(i, d.matchedLostFrmBm1)

		for j := l - 1; j > i; j-- {
			if !d.matchedLostFrmBm1.Test(j) {
				continue
			}

			lostFrameIndex, ok := d.lostFrmBm.FindNthSet(j+1, d.cfg.M)
			if !ok {
				panic("fragdec: back-substitution column does not map to a lost global index")
			}
			if err := d.cfg.Store.Read(fragstore.SlotOffset(lostFrameIndex, d.cfg.FragSize), d.rowDataBuf); err != nil {
				return errors.Wrapf(err, "fragdec: back-substitution read of slot %d", lostFrameIndex)
			}

			d.lostFrmMatrix.ReadLine(j, d.matchedLostFrmBm0)
			bitvec.XorInPlace(d.matchedLostFrmBm1, d.matchedLostFrmBm0, l)
			xorBytes(d.xorRowDataBuf, d.rowDataBuf)

			d.lostFrmMatrix.WriteLine(i, d.matchedLostFrmBm1)
		}

		if err := d.cfg.Store.Write(fragstore.SlotOffset(frameIndex, d.cfg.FragSize), d.xorRowDataBuf); err != nil {
			return errors.Wrapf(err, "fragdec: back-substitution write of slot %d", frameIndex)
		}
	}

	return nil
}
