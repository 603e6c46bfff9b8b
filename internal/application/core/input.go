package core

import (
	"go.uber.org/zap"

	"github.com/younwookim/tickhook/internal/application/replay"
	"github.com/younwookim/tickhook/internal/infrastructure/hook"
	"github.com/younwookim/tickhook/internal/infrastructure/hostmem"
)

// maxNpadRecords bounds how many records one input request may return
const maxNpadRecords = 16

// WrapInput is a hook.Wrapper for the host's input function, whose arguments
// are (record array address, capacity, controller id address) and whose
// result is the number of records written. The records are rewritten in
// place with the injected input merged in.
func (c *Core) WrapInput(orig hook.Func) hook.Func {
	return func(args ...uint64) uint64 {
		written := orig(args...)
		c.injectInput(hook.Arg(args, 0), int(int32(written)))
		return written
	}
}

func (c *Core) injectInput(out uint64, n int) {
	tick := c.Scheduler.Current()
	if n <= 0 || !c.check(out) {
		c.Engine.ApplyAll(tick, nil)
		return
	}
	if n > maxNpadRecords {
		n = maxNpadRecords
	}

	stride := uint64(c.npad.Stride)
	ins := make([]replay.Input, 0, n)
	for i := 0; i < n; i++ {
		rec := out + uint64(i)*stride
		// records past the first implausible address are left alone
		if !c.check(rec) {
			break
		}
		ins = append(ins, c.readRecord(rec))
	}

	c.Engine.ApplyAll(tick, ins)

	for i, in := range ins {
		rec := out + uint64(i)*stride
		if err := c.writeRecord(rec, in); err != nil {
			c.log.Debug("input record write failed", zap.Int("record", i), zap.Error(err))
			return
		}
	}
}

func (c *Core) readRecord(rec uint64) replay.Input {
	buttons, _ := hostmem.U64(c.space, rec+uint64(c.npad.Buttons))
	x, _ := hostmem.I32(c.space, rec+uint64(c.npad.StickX))
	y, _ := hostmem.I32(c.space, rec+uint64(c.npad.StickY))
	return replay.Input{Buttons: buttons, StickX: x, StickY: y}
}

func (c *Core) writeRecord(rec uint64, in replay.Input) error {
	if err := hostmem.PutU64(c.space, rec+uint64(c.npad.Buttons), in.Buttons); err != nil {
		return err
	}
	if err := hostmem.PutI32(c.space, rec+uint64(c.npad.StickX), in.StickX); err != nil {
		return err
	}
	return hostmem.PutI32(c.space, rec+uint64(c.npad.StickY), in.StickY)
}
