// Package template renders daemon configuration files from templates.
//
// Templates use {{ }} tags processed by fasttemplate:
//
//	{{ name }}                  substitute a variable; undefined is an error
//	{{ name | filter }}         pass the value through a registered filter
//	{{ name? }}                 optional; when empty the whole line is dropped
//
// Filters are fixed once the first template has been rendered.
package template

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/valyala/fasttemplate"

	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/log"
)

//go:embed templates
var embedded embed.FS

// dropMarker tags a line emitted with an empty optional variable.
const dropMarker = "\x00drop\x00"

// Filter transforms a variable value inside a template.
type Filter func(string) (string, error)

// Vars is the rendering context.
type Vars map[string]string

// FileOptions controls the written file. Zero Perm means 0644.
type FileOptions struct {
	Perm  os.FileMode
	Owner string
	Group string
}

// ErrFiltersFrozen is returned by RegisterFilter after the first render.
var ErrFiltersFrozen = errors.New(errors.ErrCodeRender, "filters can only be registered before rendering the first template")

// Option configures a Renderer.
type Option func(*Renderer) error

// WithFilter registers an additional filter at construction.
func WithFilter(name string, f Filter) Option {
	return func(r *Renderer) error {
		return r.addFilter(name, f)
	}
}

// WithDir loads templates from a directory instead of the embedded set.
func WithDir(dir string) Option {
	return func(r *Renderer) error {
		if dir == "" {
			return nil
		}
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			return errors.NewConfigError(fmt.Sprintf("templates directory %s is not accessible", dir), err)
		}
		r.fsys = os.DirFS(dir)
		return nil
	}
}

// WithFS loads templates from fsys.
func WithFS(fsys fs.FS) Option {
	return func(r *Renderer) error {
		r.fsys = fsys
		return nil
	}
}

// Renderer loads, caches and renders templates.
type Renderer struct {
	mu      sync.Mutex
	fsys    fs.FS
	filters map[string]Filter
	frozen  bool
	cache   map[string]*fasttemplate.Template
}

// NewRenderer returns a renderer with the built-in filters registered.
func NewRenderer(opts ...Option) (*Renderer, error) {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, errors.NewInternalError("embedded templates missing", err)
	}
	r := &Renderer{
		fsys:    sub,
		filters: map[string]Filter{},
		cache:   map[string]*fasttemplate.Template{},
	}
	for name, f := range builtinFilters {
		if err := r.addFilter(name, f); err != nil {
			return nil, err
		}
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RegisterFilter makes f available under name. It fails when the name is
// taken or a template has already been rendered.
func (r *Renderer) RegisterFilter(name string, f Filter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFiltersFrozen
	}
	return r.addFilter(name, f)
}

func (r *Renderer) addFilter(name string, f Filter) error {
	if _, ok := r.filters[name]; ok {
		return errors.NewDuplicateRegistrationError("filter", name)
	}
	r.filters[name] = f
	return nil
}

// RenderString renders the named template with vars.
func (r *Renderer) RenderString(name string, vars Vars) (string, error) {
	r.mu.Lock()
	r.frozen = true
	t, err := r.load(name)
	r.mu.Unlock()
	if err != nil {
		return "", err
	}

	out, err := t.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		return r.evalTag(w, tag, vars)
	})
	if err != nil {
		return "", errors.NewRenderError(fmt.Sprintf("failed to render %s", name), err)
	}
	return dropMarkedLines(out), nil
}

// Render renders the named template into dest. Rendering happens before the
// destination is opened, so a failure leaves an existing file untouched.
func (r *Renderer) Render(dest, name string, vars Vars, opts FileOptions) error {
	rendered, err := r.RenderString(name, vars)
	if err != nil {
		return err
	}
	return WriteFile(dest, []byte(rendered), opts)
}

// WriteFile writes data to dest, creating the parent directory and applying
// mode and ownership.
func WriteFile(dest string, data []byte, opts FileOptions) error {
	perm := opts.Perm
	if perm == 0 {
		perm = 0o644
	}
	uid, gid, err := lookupOwner(opts.Owner, opts.Group)
	if err != nil {
		return errors.NewRenderError(fmt.Sprintf("failed to resolve owner of %s", dest), err)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewRenderError(fmt.Sprintf("failed to create directory %s", dir), err)
	}
	if uid >= 0 || gid >= 0 {
		if err := os.Chown(dir, uid, gid); err != nil {
			return errors.NewRenderError(fmt.Sprintf("failed to chown %s", dir), err)
		}
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return errors.NewRenderError(fmt.Sprintf("failed to open %s", dest), err)
	}
	defer f.Close()

	if err := f.Chmod(perm); err != nil {
		return errors.NewRenderError(fmt.Sprintf("failed to chmod %s", dest), err)
	}
	if uid >= 0 || gid >= 0 {
		if err := f.Chown(uid, gid); err != nil {
			return errors.NewRenderError(fmt.Sprintf("failed to chown %s", dest), err)
		}
	}
	if _, err := f.Write(data); err != nil {
		return errors.NewRenderError(fmt.Sprintf("failed to write %s", dest), err)
	}
	log.Debugf("Wrote %s (%d bytes)", dest, len(data))
	return nil
}

func (r *Renderer) load(name string) (*fasttemplate.Template, error) {
	if t, ok := r.cache[name]; ok {
		return t, nil
	}
	src, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, errors.NewRenderError(fmt.Sprintf("template %s not found", name), err)
	}
	t, err := fasttemplate.NewTemplate(string(src), "{{", "}}")
	if err != nil {
		return nil, errors.NewRenderError(fmt.Sprintf("failed to parse template %s", name), err)
	}
	r.cache[name] = t
	return t, nil
}

func (r *Renderer) evalTag(w io.Writer, tag string, vars Vars) (int, error) {
	parts := strings.Split(tag, "|")
	name := strings.TrimSpace(parts[0])
	optional := strings.HasSuffix(name, "?")
	name = strings.TrimSuffix(name, "?")

	value, ok := vars[name]
	if !ok && !optional {
		return 0, fmt.Errorf("undefined variable %q", name)
	}
	if value == "" && optional {
		return w.Write([]byte(dropMarker))
	}

	for _, p := range parts[1:] {
		fname := strings.TrimSpace(p)
		f, ok := r.filters[fname]
		if !ok {
			return 0, fmt.Errorf("unknown filter %q", fname)
		}
		var err error
		if value, err = f(value); err != nil {
			return 0, fmt.Errorf("filter %s: %w", fname, err)
		}
	}
	return w.Write([]byte(value))
}

func dropMarkedLines(s string) string {
	if !strings.Contains(s, dropMarker) {
		return s
	}
	var buf bytes.Buffer
	lines := strings.SplitAfter(s, "\n")
	for _, line := range lines {
		if strings.Contains(line, dropMarker) {
			continue
		}
		buf.WriteString(line)
	}
	return buf.String()
}

// lookupOwner returns -1 for an unset owner or group.
func lookupOwner(owner, group string) (int, int, error) {
	uid, gid := -1, -1
	if owner != "" {
		u, err := user.Lookup(owner)
		if err != nil {
			return 0, 0, err
		}
		if uid, err = strconv.Atoi(u.Uid); err != nil {
			return 0, 0, err
		}
	}
	if group != "" {
		g, err := user.LookupGroup(group)
		if err != nil {
			return 0, 0, err
		}
		var err2 error
		if gid, err2 = strconv.Atoi(g.Gid); err2 != nil {
			return 0, 0, err2
		}
	}
	return uid, gid, nil
}
