package harness

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/xfertest/alloc"
	"github.com/sarchlab/xfertest/dmaengine"
)

// runEngineSection runs the engine-mediated hops src->fix and fix->dst.
// If the first hop fails to transfer at all, the second one is skipped:
// copying a known-corrupt intermediate proves nothing.
func (h *Harness) runEngineSection(
	report *Report,
	ch dmaengine.Channel,
	src, fix, dst *alloc.Buffer,
) {
	if err := fillRegions(h.rng, h.cfg.BufferSize, src, fix, dst); err != nil {
		h.log.WithError(err).Error("failed to initialize engine test payload")
		return
	}

	if !h.runEngineHop(report, ch, "src", src, h.allocator, "fix", fix, h.fixAlloc) {
		return
	}
	h.runEngineHop(report, ch, "fix", fix, h.fixAlloc, "dst", dst, h.allocator)
}

// runCPUSection runs the CPU-mediated hops. Both hops always run.
func (h *Harness) runCPUSection(report *Report, src, fix, dst *alloc.Buffer) {
	if err := fillRegions(h.rng, h.cfg.BufferSize, src, fix, dst); err != nil {
		h.log.WithError(err).Error("failed to initialize CPU test payload")
		return
	}

	h.runCPUHop(report, "src", src, "fix", fix)
	h.runCPUHop(report, "fix", fix, "dst", dst)
}

// runEngineHop copies src into dst through the engine and verifies the
// result. It returns false only when the copy itself failed; a checksum
// mismatch is reported NG but does not cut the section short.
func (h *Harness) runEngineHop(
	report *Report,
	ch dmaengine.Channel,
	srcName string, src *alloc.Buffer, srcAlloc alloc.Allocator,
	dstName string, dst *alloc.Buffer, dstAlloc alloc.Allocator,
) bool {
	hop := srcName + "->" + dstName
	result := HopResult{
		Mode:    "DMA",
		SrcName: srcName,
		DstName: dstName,
		SrcAddr: src.PhysAddr(),
		DstAddr: dst.PhysAddr(),
	}

	err := h.copyEngine(ch, hop, dst, dstAlloc, src, srcAlloc)
	if err == nil {
		result.Pass, err = h.verifyHop(hop, src, dst)
	}
	if err != nil {
		result.Err = err
		h.log.WithError(err).Errorf("failed to transfer %s", hop)
		h.record(report, result)
		return false
	}

	h.logHop(result)
	h.record(report, result)

	return true
}

// copyEngine performs one engine-mediated hop: map both buffers for the
// device, flush the CPU view, submit the descriptor, wait for
// completion, reset the channel, and invalidate the CPU view of the
// destination. The sync calls are no-ops under coherent allocation.
func (h *Harness) copyEngine(
	ch dmaengine.Channel,
	hop string,
	dst *alloc.Buffer, dstAlloc alloc.Allocator,
	src *alloc.Buffer, srcAlloc alloc.Allocator,
) error {
	srcDev, err := srcAlloc.MapForDevice(src)
	if err != nil {
		return &TransferError{Hop: hop, Err: err}
	}
	defer srcAlloc.UnmapForDevice(src)

	dstDev, err := dstAlloc.MapForDevice(dst)
	if err != nil {
		return &TransferError{Hop: hop, Err: err}
	}
	defer dstAlloc.UnmapForDevice(dst)

	if err := srcAlloc.SyncForDevice(src); err != nil {
		return &TransferError{Hop: hop, Err: err}
	}
	if err := dstAlloc.SyncForDevice(dst); err != nil {
		return &TransferError{Hop: hop, Err: err}
	}

	desc := dmaengine.DescBuilder{}.
		WithSrcAddr(srcDev).
		WithDstAddr(dstDev).
		WithByteSize(h.cfg.BufferSize).
		Build()

	cookie, err := ch.Submit(desc)
	if err != nil {
		ch.Terminate()
		return &TransferError{Hop: hop, Err: err}
	}

	status := ch.Wait(cookie, h.cfg.Timeout)
	ch.Terminate()

	if status != dmaengine.StatusCompleted {
		return &TransferError{Hop: hop, Status: status}
	}

	if err := dstAlloc.SyncForCPU(dst); err != nil {
		return &TransferError{Hop: hop, Err: err}
	}

	return nil
}

// runCPUHop copies src into dst with the processor and verifies the
// result.
func (h *Harness) runCPUHop(
	report *Report,
	srcName string, src *alloc.Buffer,
	dstName string, dst *alloc.Buffer,
) {
	hop := srcName + "->" + dstName
	result := HopResult{
		Mode:    "CPU",
		SrcName: srcName,
		DstName: dstName,
		SrcAddr: src.PhysAddr(),
		DstAddr: dst.PhysAddr(),
	}

	err := h.copyCPU(dst, src)
	if err == nil {
		result.Pass, err = h.verifyHop(hop, src, dst)
	}
	if err != nil {
		result.Err = err
		h.log.WithError(err).Errorf("failed to transfer %s", hop)
		h.record(report, result)
		return
	}

	h.logHop(result)
	h.record(report, result)
}

func (h *Harness) copyCPU(dst, src *alloc.Buffer) error {
	data, err := src.Read(0, h.cfg.BufferSize)
	if err != nil {
		return err
	}
	return dst.Write(0, data)
}

func (h *Harness) verifyHop(hop string, src, dst *alloc.Buffer) (bool, error) {
	pass, err := verify(src, dst, h.cfg.BufferSize)
	if err != nil {
		return false, fmt.Errorf("verifying %s: %w", hop, err)
	}
	return pass, nil
}

func (h *Harness) logHop(r HopResult) {
	h.log.WithFields(logrus.Fields{
		"mode":   r.Mode,
		"src":    r.SrcName,
		"dst":    r.DstName,
		"result": r.Verdict(),
	}).Infof("%s: %s:%#x -> %s:%#x %s",
		r.Mode, r.SrcName, r.SrcAddr, r.DstName, r.DstAddr, r.Verdict())
}

func (h *Harness) record(report *Report, r HopResult) {
	report.Hops = append(report.Hops, r)
	if h.recorder != nil {
		h.recorder.RecordHop(r)
	}
}
