package navtree

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/standardbeagle/navpatch/internal/types"
)

func hostFixture(profile string) string {
	return filepath.Join("..", "..", "testdata", "hosts", profile, "typescript.js")
}

type fakeModule struct {
	mu         sync.Mutex
	calls      int
	lastSource types.SourceFile
	lastToken  types.CancellationToken
}

func (m *fakeModule) GetNavigationTree(sourceFile types.SourceFile, token types.CancellationToken) (types.NavigationTree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastSource = sourceFile
	m.lastToken = token
	return map[string]interface{}{"text": "<global>", "kind": "module"}, nil
}

type fakeCompiler struct {
	mu     sync.Mutex
	texts  []string
	module *fakeModule
	err    error
}

func newFakeCompiler() *fakeCompiler {
	return &fakeCompiler{module: &fakeModule{}}
}

func (c *fakeCompiler) Compile(text string, _ types.Bindings) (types.NavigationModule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	if c.err != nil {
		return nil, c.err
	}
	return c.module, nil
}

func (c *fakeCompiler) compiled() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.texts...)
}

type fakeProgram map[string]types.SourceFile

func (p fakeProgram) SourceFile(fileName string) (types.SourceFile, bool) {
	sf, ok := p[fileName]
	return sf, ok
}

type fakeHost struct {
	program types.Program
	token   types.CancellationToken
}

func (h *fakeHost) Program() (types.Program, bool) {
	return h.program, h.program != nil
}

func (h *fakeHost) CancellationToken() (types.CancellationToken, bool) {
	return h.token, h.token != nil
}

var errCancelled = errors.New("operation cancelled")

// cancelledToken has already been cancelled.
type cancelledToken struct {
	id int
}

func (*cancelledToken) IsCancellationRequested() bool       { return true }
func (*cancelledToken) ThrowIfCancellationRequested() error { return errCancelled }
