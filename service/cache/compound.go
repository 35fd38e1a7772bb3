package cache

import (
	"github.com/x-xyz/nftmarket/base/ctx"
)

type compound struct {
	layers []Service
}

// NewCompound stacks services, fastest first. A hit in a lower layer fills
// the layers above it.
func NewCompound(layers ...Service) Service {
	return &compound{layers: layers}
}

func (im *compound) GetByFunc(c ctx.Ctx, key string, container interface{}, getter OneTimeGetter) error {
	return getByFunc(c, im, key, container, getter)
}

func (im *compound) Get(c ctx.Ctx, key string, container interface{}) error {
	hitIdx := -1
	for idx, lyr := range im.layers {
		err := lyr.Get(c, key, container)
		if err == ErrNotFound {
			continue
		} else if err != nil {
			return err
		}
		hitIdx = idx
		break
	}

	if hitIdx == -1 {
		return ErrNotFound
	}

	// a failed fill only costs a later miss
	for idx := 0; idx < hitIdx; idx++ {
		if err := im.layers[idx].Set(c, key, container); err != nil {
			c.WithField("err", err).WithField("layer", idx).Warn("fill failed")
		}
	}
	return nil
}

func (im *compound) Set(c ctx.Ctx, key string, value interface{}) error {
	for _, lyr := range im.layers {
		if err := lyr.Set(c, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Del tries every layer and returns the first error
func (im *compound) Del(c ctx.Ctx, key string) error {
	var first error
	for _, lyr := range im.layers {
		if err := lyr.Del(c, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}
