package session

import (
	"github.com/prismdocs/atlas/pkg/gesture"
	"github.com/prismdocs/atlas/pkg/logging"
)

// PendingInput is returned when a gesture asks for user text before
// the graph can change, such as an edge dropped over blank space.
type PendingInput struct {
	Action gesture.ActionOpenNodeInput
}

// HandleAction interprets a resolved gesture into session mutations.
// ActionOpenNodeInput cannot complete without a prompt, so it comes
// back to the caller as a PendingInput to be finished with
// CreateConnectedNode once the user submits.
func (s *Session) HandleAction(action gesture.Action) (*PendingInput, error) {
	switch a := action.(type) {
	case gesture.ActionNone, nil:
		return nil, nil

	case gesture.ActionClearSelection:
		return nil, s.ClearSelection()

	case gesture.ActionSelectNodes:
		return nil, s.SelectNodes(a.IDs, a.Additive)

	case gesture.ActionNodeClick:
		return nil, s.SelectNode(a.NodeID, a.Additive)

	case gesture.ActionCommitDrag:
		return nil, s.MoveNode(a.NodeID, a.Position)

	case gesture.ActionConnectDrop:
		_, err := s.InitiateMerge([]string{a.SourceID, a.TargetID})
		return nil, err

	case gesture.ActionOpenNodeInput:
		return &PendingInput{Action: a}, nil

	default:
		s.logger.Warn("unhandled gesture action", logging.Any("action", action))
		return nil, nil
	}
}
