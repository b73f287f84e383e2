package batch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"capsolver/pkg/cache"
	"capsolver/pkg/captcha"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Result is the outcome for one input file.
type Result struct {
	Name     string
	Digest   string // sha256 of the input as handed to the decoder
	Code     string
	OK       bool
	Kind     string
	Err      error
	Duration time.Duration
}

// Processor solves captcha files from a directory. Image files are decoded directly,
// text files must hold a single GIF data URL.
type Processor struct {
	Solver  *captcha.Solver
	Workers int // default NumCPU
	Log     *logrus.Logger
	// OnResult, when set, is called from worker goroutines for every result.
	OnResult func(Result)
}

var imageExt = map[string]bool{".gif": true, ".png": true, ".jpg": true, ".jpeg": true, ".bmp": true}

var textExt = map[string]bool{".txt": true, ".b64": true}

// IsSupported reports whether name looks like a captcha input.
func IsSupported(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return imageExt[ext] || textExt[ext]
}

// ListInputFiles returns the supported file names in dir, sorted.
func ListInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// SolveFile recognizes the captcha stored at path.
func (p *Processor) SolveFile(path string) Result {
	start := time.Now()
	res := Result{Name: filepath.Base(path)}
	code, digest, err := p.solvePath(path)
	res.Digest = digest
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		res.Kind = captcha.Kind(err)
		return res
	}
	res.Code, res.OK = code, true
	return res
}

func (p *Processor) solvePath(path string) (string, string, error) {
	img, digest, err := LoadImage(path)
	if err != nil {
		return "", digest, err
	}
	code, err := p.Solver.Recognize(img)
	return code, digest, err
}

// LoadImage reads a captcha file. Text files go through captcha.Decode, so they get the
// same prefix and base64 checks as API input. The digest is the sha256 of that input.
func LoadImage(path string) (image.Image, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	if textExt[strings.ToLower(filepath.Ext(path))] {
		input := strings.TrimSpace(string(raw))
		img, err := captcha.Decode(input)
		return img, cache.Key("", input), err
	}
	digest := cache.Key("", string(raw))
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, digest, fmt.Errorf("%w: %v", captcha.ErrImageDecode, err)
	}
	return img, digest, nil
}

func (p *Processor) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.NumCPU()
}

func (p *Processor) emit(r Result) {
	if p.Log != nil {
		entry := p.Log.WithFields(logrus.Fields{"file": r.Name, "duration": r.Duration.String()})
		if r.OK {
			entry.WithField("code", r.Code).Debug("captcha recognized")
		} else {
			entry.WithField("kind", r.Kind).WithError(r.Err).Info("captcha not recognized")
		}
	}
	if p.OnResult != nil {
		p.OnResult(r)
	}
}

// runWorkerPool solves names from fileCh until it is closed or ctx ends.
func (p *Processor) runWorkerPool(ctx context.Context, dir string, fileCh <-chan string, out chan<- Result) {
	var wg sync.WaitGroup
	for i := 0; i < p.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case name, ok := <-fileCh:
					if !ok {
						return
					}
					r := p.SolveFile(filepath.Join(dir, name))
					p.emit(r)
					select {
					case out <- r:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

// Run solves every supported file currently in dir. Results are sorted by file name.
func (p *Processor) Run(ctx context.Context, dir string) ([]Result, error) {
	names, err := ListInputFiles(dir)
	if err != nil {
		return nil, err
	}
	fileCh := make(chan string)
	out := make(chan Result, len(names))
	go func() {
		defer close(fileCh)
		for _, n := range names {
			select {
			case fileCh <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	p.runWorkerPool(ctx, dir, fileCh, out)
	close(out)

	results := make([]Result, 0, len(names))
	for r := range out {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, ctx.Err()
}

// Watch solves files created in dir until ctx ends, sending each result to out.
// A file is picked up once it has had no events for the settle period.
func (p *Processor) Watch(ctx context.Context, dir string, out chan<- Result) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	if p.Log != nil {
		p.Log.WithField("dir", dir).Info("watching for captcha files")
	}

	const settle = 300 * time.Millisecond
	fileCh := make(chan string, 256)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.runWorkerPool(ctx, dir, fileCh, out)
	}()

	pending := map[string]time.Time{}
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			close(fileCh)
			<-done
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				close(fileCh)
				<-done
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if IsSupported(name) {
				pending[name] = time.Now()
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > settle {
					delete(pending, name)
					select {
					case fileCh <- name:
					case <-ctx.Done():
					}
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				close(fileCh)
				<-done
				return nil
			}
			if p.Log != nil {
				p.Log.WithError(err).Warn("watch error")
			}
		}
	}
}
