package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/mdextract"
	"github.com/fwojciec/mdextract/mock"
	"github.com/fwojciec/mdextract/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticExtractor(ext *mdextract.Extraction) *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(context.Context, *mdextract.Request) (*mdextract.Extraction, error) {
			return ext, nil
		},
	}
}

func echoConverter(prefix string) *mock.Converter {
	return &mock.Converter{
		ConvertFn: func(text string) (string, error) { return prefix + text, nil },
	}
}

func failingConverter(t *testing.T) *mock.Converter {
	return &mock.Converter{
		ConvertFn: func(string) (string, error) {
			t.Error("converter must not be called")
			return "", nil
		},
	}
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	t.Run("routes each request to its strategy", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var called []mdextract.Strategy
		extractors := map[mdextract.Strategy]mdextract.Extractor{}
		for _, s := range mdextract.Strategies() {
			extractors[s] = &mock.Extractor{
				ExtractFn: func(context.Context, *mdextract.Request) (*mdextract.Extraction, error) {
					mu.Lock()
					called = append(called, s)
					mu.Unlock()
					return &mdextract.Extraction{Text: "t"}, nil
				},
			}
		}
		p := pipeline.New(extractors, echoConverter(""), echoConverter(""), 0, nil)

		requests := []*mdextract.Request{
			mdextract.NewPDFRequest("a.pdf", []byte("%PDF"), mdextract.BackendOpenSource),
			mdextract.NewPDFRequest("a.pdf", []byte("%PDF"), mdextract.BackendEnterprise),
			mdextract.NewWebRequest("https://a.com", mdextract.BackendOpenSource),
			mdextract.NewWebRequest("https://a.com", mdextract.BackendEnterprise),
		}
		for _, req := range requests {
			_, err := p.Run(context.Background(), req)
			require.NoError(t, err)
		}

		assert.Equal(t, []mdextract.Strategy{
			mdextract.StrategyLocalPDF,
			mdextract.StrategyRemotePDF,
			mdextract.StrategyHTMLScrape,
			mdextract.StrategyRemoteAnalysis,
		}, called)
	})

	t.Run("feeds the same text to both converters", func(t *testing.T) {
		t.Parallel()

		p := pipeline.New(map[mdextract.Strategy]mdextract.Extractor{
			mdextract.StrategyHTMLScrape: staticExtractor(&mdextract.Extraction{Text: "hello"}),
		}, echoConverter("D:"), echoConverter("M:"), 0, nil)

		res, err := p.Run(context.Background(), mdextract.NewWebRequest("https://a.com", mdextract.BackendOpenSource))

		require.NoError(t, err)
		assert.Equal(t, "D:hello", res.DoclingMarkdown)
		assert.Equal(t, "M:hello", res.MarkitdownMarkdown)
		assert.Equal(t, "hello", res.RawText)
		assert.NotNil(t, res.Images)
		assert.NotNil(t, res.Tables)
		assert.NotNil(t, res.Links)
	})

	t.Run("one failing converter leaves the other intact", func(t *testing.T) {
		t.Parallel()

		docling := &mock.Converter{
			ConvertFn: func(string) (string, error) {
				return "", mdextract.Errorf(mdextract.ECONVERSION, "layout model crashed")
			},
		}
		p := pipeline.New(map[mdextract.Strategy]mdextract.Extractor{
			mdextract.StrategyHTMLScrape: staticExtractor(&mdextract.Extraction{Text: "hello"}),
		}, docling, echoConverter("M:"), 0, nil)

		res, err := p.Run(context.Background(), mdextract.NewWebRequest("https://a.com", mdextract.BackendOpenSource))

		require.NoError(t, err)
		assert.Equal(t, "Docling conversion failed: layout model crashed", res.DoclingMarkdown)
		assert.Equal(t, "M:hello", res.MarkitdownMarkdown)
	})

	t.Run("converter panic becomes a failure marker", func(t *testing.T) {
		t.Parallel()

		markitdown := &mock.Converter{
			ConvertFn: func(string) (string, error) { panic("boom") },
		}
		p := pipeline.New(map[mdextract.Strategy]mdextract.Extractor{
			mdextract.StrategyHTMLScrape: staticExtractor(&mdextract.Extraction{Text: "hello"}),
		}, echoConverter("D:"), markitdown, 0, nil)

		res, err := p.Run(context.Background(), mdextract.NewWebRequest("https://a.com", mdextract.BackendOpenSource))

		require.NoError(t, err)
		assert.Equal(t, "D:hello", res.DoclingMarkdown)
		assert.Equal(t, "Markitdown conversion failed: panic: boom", res.MarkitdownMarkdown)
	})

	t.Run("runs converters concurrently", func(t *testing.T) {
		t.Parallel()

		var wg sync.WaitGroup
		wg.Add(2)
		rendezvous := func(string) (string, error) {
			wg.Done()
			done := make(chan struct{})
			go func() { wg.Wait(); close(done) }()
			select {
			case <-done:
				return "ok", nil
			case <-time.After(2 * time.Second):
				return "", errors.New("converters ran sequentially")
			}
		}
		p := pipeline.New(map[mdextract.Strategy]mdextract.Extractor{
			mdextract.StrategyHTMLScrape: staticExtractor(&mdextract.Extraction{Text: "x"}),
		}, &mock.Converter{ConvertFn: rendezvous}, &mock.Converter{ConvertFn: rendezvous}, 0, nil)

		res, err := p.Run(context.Background(), mdextract.NewWebRequest("https://a.com", mdextract.BackendOpenSource))

		require.NoError(t, err)
		assert.Equal(t, "ok", res.DoclingMarkdown)
		assert.Equal(t, "ok", res.MarkitdownMarkdown)
	})

	t.Run("converts the report when there is no text", func(t *testing.T) {
		t.Parallel()

		p := pipeline.New(map[mdextract.Strategy]mdextract.Extractor{
			mdextract.StrategyRemoteAnalysis: staticExtractor(&mdextract.Extraction{Report: "# Report"}),
		}, echoConverter("D:"), echoConverter("M:"), 0, nil)

		res, err := p.Run(context.Background(), mdextract.NewWebRequest("https://a.com", mdextract.BackendEnterprise))

		require.NoError(t, err)
		assert.Equal(t, "D:# Report", res.DoclingMarkdown)
		assert.Equal(t, "M:# Report", res.MarkitdownMarkdown)
		assert.Empty(t, res.RawText)
	})

	t.Run("bundles skip conversion", func(t *testing.T) {
		t.Parallel()

		p := pipeline.New(map[mdextract.Strategy]mdextract.Extractor{
			mdextract.StrategyRemotePDF: staticExtractor(&mdextract.Extraction{Bundle: []byte("zip")}),
		}, failingConverter(t), failingConverter(t), 0, nil)

		res, err := p.Run(context.Background(), mdextract.NewPDFRequest("a.pdf", []byte("%PDF"), mdextract.BackendEnterprise))

		require.NoError(t, err)
		assert.Equal(t, []byte("zip"), res.Bundle)
		assert.Empty(t, res.DoclingMarkdown)
	})

	t.Run("carries partial failures through", func(t *testing.T) {
		t.Parallel()

		ext := &mdextract.Extraction{Text: "t"}
		ext.Fail(mdextract.StreamImages, "Image extraction failed")
		p := pipeline.New(map[mdextract.Strategy]mdextract.Extractor{
			mdextract.StrategyHTMLScrape: staticExtractor(ext),
		}, echoConverter(""), echoConverter(""), 0, nil)

		res, err := p.Run(context.Background(), mdextract.NewWebRequest("https://a.com", mdextract.BackendOpenSource))

		require.NoError(t, err)
		assert.Equal(t, "Image extraction failed", res.Failures[mdextract.StreamImages])
		assert.Empty(t, res.Images)
	})

	t.Run("extractor errors are terminal", func(t *testing.T) {
		t.Parallel()

		p := pipeline.New(map[mdextract.Strategy]mdextract.Extractor{
			mdextract.StrategyHTMLScrape: &mock.Extractor{
				ExtractFn: func(context.Context, *mdextract.Request) (*mdextract.Extraction, error) {
					return nil, mdextract.Errorf(mdextract.EUNREACHABLE, "URL returned status code: 404")
				},
			},
		}, failingConverter(t), failingConverter(t), 0, nil)

		res, err := p.Run(context.Background(), mdextract.NewWebRequest("https://a.com", mdextract.BackendOpenSource))

		require.Error(t, err)
		assert.Nil(t, res)
		assert.Equal(t, mdextract.EUNREACHABLE, mdextract.ErrorCode(err))
	})

	t.Run("missing strategy is an internal error", func(t *testing.T) {
		t.Parallel()

		p := pipeline.New(nil, echoConverter(""), echoConverter(""), 0, nil)

		_, err := p.Run(context.Background(), mdextract.NewWebRequest("https://a.com", mdextract.BackendOpenSource))

		require.Error(t, err)
		assert.Equal(t, mdextract.EINTERNAL, mdextract.ErrorCode(err))
	})

	t.Run("invalid request is rejected before extraction", func(t *testing.T) {
		t.Parallel()

		p := pipeline.New(nil, failingConverter(t), failingConverter(t), 0, nil)

		_, err := p.Run(context.Background(), mdextract.NewWebRequest("  ", mdextract.BackendOpenSource))

		require.Error(t, err)
		assert.Equal(t, mdextract.EINVALID, mdextract.ErrorCode(err))
	})

	t.Run("bounds concurrent local jobs", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int32
		release := make(chan struct{})
		p := pipeline.New(map[mdextract.Strategy]mdextract.Extractor{
			mdextract.StrategyLocalPDF: &mock.Extractor{
				ExtractFn: func(context.Context, *mdextract.Request) (*mdextract.Extraction, error) {
					n := inFlight.Add(1)
					for {
						old := peak.Load()
						if n <= old || peak.CompareAndSwap(old, n) {
							break
						}
					}
					<-release
					inFlight.Add(-1)
					return &mdextract.Extraction{Text: "t"}, nil
				},
			},
		}, echoConverter(""), echoConverter(""), 1, nil)

		var wg sync.WaitGroup
		for range 3 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := p.Run(context.Background(), mdextract.NewPDFRequest("a.pdf", []byte("%PDF"), mdextract.BackendOpenSource))
				assert.NoError(t, err)
			}()
		}
		for range 3 {
			release <- struct{}{}
		}
		wg.Wait()

		assert.Equal(t, int32(1), peak.Load())
	})
}
