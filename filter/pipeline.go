package filter

import (
	"fmt"

	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/format"
)

// MaxFilters is the number of slots in a pipeline and in a chunk header.
const MaxFilters = 6

// Slot is one (kind, metadata) entry of a pipeline.
type Slot struct {
	Type format.FilterType
	Meta uint8
}

// Pipeline is an ordered list of filters. Forward runs the slots in order,
// Reverse runs them backwards. FilterNone slots are skipped.
type Pipeline []Slot

// Validate checks the pipeline length, filter ids and per-filter metadata.
func (p Pipeline) Validate(typesize int) error {
	if len(p) > MaxFilters {
		return fmt.Errorf("%w: %d > %d", errs.ErrTooManyFilters, len(p), MaxFilters)
	}

	for i, slot := range p {
		if slot.Type == format.FilterNone {
			continue
		}

		f, err := Get(slot.Type)
		if err != nil {
			return err
		}

		if mv, ok := f.(MetaValidator); ok {
			if err := mv.ValidateMeta(typesize, slot.Meta); err != nil {
				return &errs.FilterError{Filter: slot.Type.String(), Position: i, Err: err}
			}
		}
	}

	return nil
}

// Active returns the pipeline without FilterNone slots.
func (p Pipeline) Active() Pipeline {
	out := make(Pipeline, 0, len(p))
	for _, slot := range p {
		if slot.Type != format.FilterNone {
			out = append(out, slot)
		}
	}

	return out
}

// Lossy reports whether any filter in the pipeline is lossy.
func (p Pipeline) Lossy() bool {
	for _, slot := range p {
		if slot.Type == format.FilterNone {
			continue
		}
		if f, err := Get(slot.Type); err == nil && f.Lossy() {
			return true
		}
	}

	return false
}

// Forward applies every filter in order.
//
// src is never modified. bufA and bufB are scratch buffers of len(src) used in
// turn as destinations; bufB is only touched by pipelines with two or more
// active filters. The returned slice is src itself (empty pipeline), bufA or bufB.
func (p Pipeline) Forward(typesize int, src, bufA, bufB []byte) ([]byte, error) {
	return p.run(Forward, typesize, src, bufA, bufB)
}

// Reverse undoes Forward by applying every filter in reverse order.
//
// Buffer rules match Forward. Passing src as bufB is allowed: src is only read
// by the first step.
func (p Pipeline) Reverse(typesize int, src, bufA, bufB []byte) ([]byte, error) {
	return p.run(Reverse, typesize, src, bufA, bufB)
}

func (p Pipeline) run(dir Direction, typesize int, src, bufA, bufB []byte) ([]byte, error) {
	positions := make([]int, 0, len(p))
	for i, slot := range p {
		if slot.Type != format.FilterNone {
			positions = append(positions, i)
		}
	}
	if len(positions) == 0 {
		return src, nil
	}

	if dir == Reverse {
		for i, j := 0, len(positions)-1; i < j; i, j = i+1, j-1 {
			positions[i], positions[j] = positions[j], positions[i]
		}
	}

	bufs := [2][]byte{bufA, bufB}
	in := src
	for step, pos := range positions {
		out := bufs[step%2]
		if len(out) != len(src) {
			return nil, fmt.Errorf("%w: scratch buffer %d bytes, data %d bytes", errs.ErrSizeMismatch, len(out), len(src))
		}

		slot := p[pos]
		f, err := Get(slot.Type)
		if err != nil {
			return nil, err
		}
		if err := run(f, pos, dir, typesize, slot.Meta, in, out); err != nil {
			return nil, err
		}
		in = out
	}

	return in, nil
}
