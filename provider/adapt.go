package provider

import "context"

// Codec translates between a domain provider's types and a backend's.
// Encode may reject an input before the backend is called. Decode sees the
// original input next to the backend output.
type Codec[I, O, BI, BO any] struct {
	Encode func(ctx context.Context, input I) (BI, error)
	Decode func(input I, output BO) (O, error)
}

// Adapt exposes inner as a RequestResponse[I, O] named name. Backend errors
// pass through untouched.
func Adapt[I, O, BI, BO any](inner RequestResponse[BI, BO], name string, codec Codec[I, O, BI, BO]) RequestResponse[I, O] {
	return &adapted[I, O, BI, BO]{inner: inner, name: name, codec: codec}
}

type adapted[I, O, BI, BO any] struct {
	inner RequestResponse[BI, BO]
	name  string
	codec Codec[I, O, BI, BO]
}

func (a *adapted[I, O, BI, BO]) Name() string { return a.name }

func (a *adapted[I, O, BI, BO]) IsAvailable(ctx context.Context) bool {
	return a.inner.IsAvailable(ctx)
}

func (a *adapted[I, O, BI, BO]) Execute(ctx context.Context, input I) (out O, err error) {
	in, err := a.codec.Encode(ctx, input)
	if err != nil {
		return out, err
	}
	raw, err := a.inner.Execute(ctx, in)
	if err != nil {
		return out, err
	}
	return a.codec.Decode(input, raw)
}
