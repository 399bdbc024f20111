package corpus

import "context"

// mockHashReader implements db.HashReader for tests.
type mockHashReader struct {
	keysFn   func(ctx context.Context, prefix string) ([]string, error)
	hashesFn func(ctx context.Context, keys []string) ([]map[string]string, error)
}

func (m *mockHashReader) Keys(ctx context.Context, prefix string) ([]string, error) {
	if m.keysFn != nil {
		return m.keysFn(ctx, prefix)
	}
	return nil, nil
}

func (m *mockHashReader) Hashes(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hashesFn != nil {
		return m.hashesFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}
