package manager

import (
	"strings"

	"ftserve/internal/engine"
	"ftserve/internal/train"
	"ftserve/pkg/types"
)

// Train runs one training command on a dedicated engine instance. Only one
// training runs at a time; a concurrent request fails with a too-busy error.
// With req.Load the produced model (<output>.bin) replaces the loaded one.
func (m *Manager) Train(req types.TrainRequest) (types.TrainResponse, error) {
	args, err := trainArgs(req)
	if err != nil {
		return types.TrainResponse{}, err
	}
	var modelPath string
	if req.Load {
		cmd, err := train.ParseArgv(args)
		if err != nil {
			return types.TrainResponse{}, ErrBadRequest(err.Error())
		}
		out := cmd.Flags["output"]
		if out == "" {
			return types.TrainResponse{}, ErrBadRequest("load requested but no -output given")
		}
		modelPath = out + ".bin"
	}

	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return types.TrainResponse{}, ErrClosed
	}
	if !m.trainMu.TryLock() {
		return types.TrainResponse{}, tooBusyError{op: "training"}
	}
	defer m.trainMu.Unlock()
	if m.trainEng == nil {
		eng, err := m.newEngine(m.trainOut)
		if err != nil {
			return types.TrainResponse{}, err
		}
		m.trainEng = eng
	}

	op := newOpID()
	argv := append([]string{engine.ProgramName}, args...)
	m.publish(EventTrainStart, "", op, map[string]any{"argv": argv})
	m.log.Info().Str("op", op).Strs("args", args).Msg("training started")
	err = m.observe("train", func() error { return train.Run(m.trainEng, args) })
	m.trains.Add(1)
	if err != nil {
		m.log.Warn().Err(err).Str("op", op).Msg("training failed")
		m.publish(EventTrainError, "", op, map[string]any{"error": err.Error()})
		return types.TrainResponse{}, err
	}
	m.publish(EventTrainDone, "", op, nil)
	m.log.Info().Str("op", op).Msg("training finished")

	resp := types.TrainResponse{OperationID: op, Argv: argv}
	if req.Load {
		if err := m.LoadPath(modelPath, true); err != nil {
			return resp, err
		}
		resp.ModelPath = modelPath
	}
	return resp, nil
}

func trainArgs(req types.TrainRequest) ([]string, error) {
	switch {
	case len(req.Args) > 0 && req.Mode != "":
		return nil, ErrBadRequest("set either args or mode, not both")
	case len(req.Args) > 0:
		if strings.TrimSpace(req.Args[0]) == "" {
			return nil, ErrBadRequest("empty training mode")
		}
		return append([]string(nil), req.Args...), nil
	default:
		c := train.Command{Mode: req.Mode, Flags: req.Flags}
		if err := c.Validate(); err != nil {
			return nil, ErrBadRequest(err.Error())
		}
		return c.Argv(), nil
	}
}
