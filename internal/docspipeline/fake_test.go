package docspipeline

import (
	"context"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

// fakeModel is a deterministic stand-in for modelclient.Client: invokeFn
// drives free-text Invoke calls (the synthesize step), structuredFn drives
// InvokeStructured (the select step) by returning a JSON document to
// unmarshal into out.
type fakeModel struct {
	invokeFn     func(req modelclient.Request) (modelclient.Response, error)
	structuredFn func(req modelclient.Request) (json.RawMessage, error)
}

func (f *fakeModel) Invoke(ctx context.Context, req modelclient.Request) (modelclient.Response, error) {
	return f.invokeFn(req)
}

func (f *fakeModel) InvokeStructured(ctx context.Context, req modelclient.Request, schema *jsonschema.Schema, out any) error {
	raw, err := f.structuredFn(req)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
