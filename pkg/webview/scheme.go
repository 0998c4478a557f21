package webview

import (
	"io"

	"github.com/bnema/wkview/internal/native"
	"github.com/bnema/wkview/internal/wk"
)

const defaultMIMEType = "application/octet-stream"

// startTask answers a wkview:// request before returning to WebKit.
func (b *bridge) startTask(self native.ID, args []native.ID) native.ID {
	task := args[1]
	absolute, path := b.engine.TaskRequestURL(task)
	log := b.scheme.With().Str("url", absolute).Logger()

	state, ok := b.requestState(self)
	if !ok {
		log.Debug().Msg("scheme task after teardown ignored")
		return 0
	}

	resp, ok := dispatch(state.handler, PlatformRequest{URI: path, URL: absolute})
	if !ok || resp == nil {
		switch state.policy {
		case MissFail:
			log.Debug().Msg("no response, failing task")
			b.engine.TaskDidFail(task, wk.ErrCodeFileDoesNotExist)
		default:
			log.Debug().Msg("no response, task left unanswered")
		}
		return 0
	}

	data, err := readBody(resp.Body)
	if err != nil {
		log.Warn().Err(err).Msg("reading response body failed")
		b.engine.TaskDidFail(task, wk.ErrCodeResourceUnavailable)
		return 0
	}

	mimeType := resp.MIMEType
	if mimeType == "" {
		mimeType = defaultMIMEType
	}

	b.engine.TaskDidReceiveResponse(task, wk.URLResponse{
		URL:           absolute,
		MIMEType:      mimeType,
		ContentLength: int64(len(data)),
	})
	b.engine.TaskDidReceiveData(task, data)
	b.engine.TaskDidFinish(task)

	log.Debug().Str("mime", mimeType).Int("bytes", len(data)).Msg("scheme task answered")
	return 0
}

// stopTask acknowledges cancellation. Tasks are answered inside startTask,
// so nothing is still in flight.
func (b *bridge) stopTask(_ native.ID, args []native.ID) native.ID {
	absolute, _ := b.engine.TaskRequestURL(args[1])
	b.scheme.Debug().Str("url", absolute).Msg("scheme task stopped")
	return 0
}

func readBody(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(body)
	if c, ok := body.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return data, err
}
