package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prismdocs/atlas/pkg/logging"
)

// NodeFrameFunc receives each streamed node in arrival order. Index is
// the node's position in the stream and total is the backend's planned
// node count for the whole stream.
type NodeFrameFunc func(node NodeData, index, total int) error

// GenerateGraphStream opens the streaming generate endpoint and calls
// onNode for every node frame until a done frame, an error frame, or
// the transport fails. A single malformed line is skipped with a
// warning, not treated as fatal. Nodes delivered before a failure are
// kept by the caller; this function never rolls anything back.
func (c *Client) GenerateGraphStream(ctx context.Context, genReq GenerateRequest, onNode NodeFrameFunc) error {
	const op = "generate_stream"
	start := time.Now()

	err := c.stream(ctx, op, genReq, onNode)
	status := "success"
	if err != nil {
		status = "error"
		c.metrics.StreamErrorsTotal.Inc()
	}
	c.metrics.RecordBackendRequest(op, status, time.Since(start))
	return err
}

func (c *Client) stream(ctx context.Context, op string, genReq GenerateRequest, onNode NodeFrameFunc) error {
	payload, err := json.Marshal(genReq)
	if err != nil {
		return &RequestError{Op: op, Cause: err}
	}

	req, err := c.newRequest(ctx, "/graph/generate/stream", payload)
	if err != nil {
		return &RequestError{Op: op, Cause: err}
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RequestError{Op: op, Status: resp.StatusCode}
	}

	c.metrics.StreamsActive.Inc()
	defer c.metrics.StreamsActive.Dec()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	frameIndex := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return &RequestError{Op: op, Cause: err}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		raw := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var frame StreamFrame
		if err := json.Unmarshal([]byte(raw), &frame); err != nil {
			c.logger.Warn("skipping malformed stream line",
				logging.Operation(op),
				logging.FrameIndex(frameIndex),
				logging.Error(err),
			)
			frameIndex++
			continue
		}
		frameIndex++
		c.metrics.RecordStreamFrame(frame.Type)

		switch frame.Type {
		case FrameNode:
			var node NodeData
			if err := json.Unmarshal(frame.Data, &node); err != nil {
				c.logger.Warn("skipping malformed node frame",
					logging.Operation(op),
					logging.FrameIndex(frame.Index),
					logging.Error(err),
				)
				continue
			}
			if err := onNode(node, frame.Index, frame.Total); err != nil {
				return err
			}

		case FrameDone:
			return nil

		case FrameError:
			var data streamErrorData
			if err := json.Unmarshal(frame.Data, &data); err != nil || data.Message == "" {
				data.Message = "stream failed"
			}
			return &RequestError{Op: op, Cause: fmt.Errorf("%s", data.Message)}

		default:
			c.logger.Warn("unknown stream frame type",
				logging.Operation(op),
				logging.String("frame_type", frame.Type),
			)
		}
	}
	if err := scanner.Err(); err != nil {
		return &RequestError{Op: op, Cause: err}
	}
	// Stream ended without a done frame; treat as complete
	return nil
}
