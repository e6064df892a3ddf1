package lms

import (
	"context"
	"fmt"
	"time"
)

// fakeElement is a scriptable DOM node for tests.
type fakeElement struct {
	text     string
	children map[string][]*fakeElement
}

func elem(text string) *fakeElement {
	return &fakeElement{text: text, children: map[string][]*fakeElement{}}
}

// with attaches children under a selector and returns the element.
func (e *fakeElement) with(selector string, kids ...*fakeElement) *fakeElement {
	e.children[selector] = append(e.children[selector], kids...)
	return e
}

func (e *fakeElement) InnerText() (string, error) {
	return e.text, nil
}

func (e *fakeElement) Query(selector string) (Element, error) {
	kids := e.children[selector]
	if len(kids) == 0 {
		return nil, nil
	}
	return kids[0], nil
}

func (e *fakeElement) QueryAll(selector string) ([]Element, error) {
	kids := e.children[selector]
	out := make([]Element, len(kids))
	for i, k := range kids {
		out[i] = k
	}
	return out, nil
}

type textState struct {
	exists  bool
	visible bool
}

// fakePage is a scriptable Page. Behavior hooks default to benign no-ops;
// individual tests override what they need.
type fakePage struct {
	url string

	// doc maps page-level selectors to elements.
	doc map[string][]*fakeElement

	// innerTexts scripts successive InnerText reads per selector; the last
	// value is held once the script runs out.
	innerTexts map[string][]string

	textStates map[string]textState

	onGoto       func(url string) error
	onClickText  func(text string) error
	onWaitForURL func(pattern string, timeout time.Duration) error

	gotos          []string
	textClicks     []string
	selectorClicks []string
	checks         []string
	fills          []fill
	urlWaits       []string
}

type fill struct {
	placeholder string
	value       string
}

func newFakePage() *fakePage {
	return &fakePage{
		doc:        map[string][]*fakeElement{},
		innerTexts: map[string][]string{},
		textStates: map[string]textState{},
	}
}

func (p *fakePage) Goto(url string) error {
	p.gotos = append(p.gotos, url)
	if p.onGoto != nil {
		return p.onGoto(url)
	}
	p.url = url
	return nil
}

func (p *fakePage) URL() string {
	return p.url
}

func (p *fakePage) WaitForURL(pattern string, timeout time.Duration) error {
	p.urlWaits = append(p.urlWaits, pattern)
	if p.onWaitForURL != nil {
		return p.onWaitForURL(pattern, timeout)
	}
	return nil
}

func (p *fakePage) ClickText(text string) error {
	p.textClicks = append(p.textClicks, text)
	if p.onClickText != nil {
		return p.onClickText(text)
	}
	return nil
}

func (p *fakePage) ClickSelector(selector string) error {
	p.selectorClicks = append(p.selectorClicks, selector)
	if _, ok := p.doc[selector]; !ok {
		return fmt.Errorf("no element matching %q", selector)
	}
	return nil
}

func (p *fakePage) FillPlaceholder(placeholder, value string) error {
	p.fills = append(p.fills, fill{placeholder: placeholder, value: value})
	return nil
}

func (p *fakePage) Check(selector string) error {
	p.checks = append(p.checks, selector)
	return nil
}

func (p *fakePage) InnerText(selector string) (string, error) {
	if seq := p.innerTexts[selector]; len(seq) > 0 {
		v := seq[0]
		if len(seq) > 1 {
			p.innerTexts[selector] = seq[1:]
		}
		return v, nil
	}
	if els := p.doc[selector]; len(els) > 0 {
		return els[0].text, nil
	}
	return "", fmt.Errorf("no element matching %q", selector)
}

func (p *fakePage) Query(selector string) (Element, error) {
	els := p.doc[selector]
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}

func (p *fakePage) QueryAll(selector string) ([]Element, error) {
	els := p.doc[selector]
	out := make([]Element, len(els))
	for i, e := range els {
		out[i] = e
	}
	return out, nil
}

func (p *fakePage) TextState(text string, _ time.Duration) (bool, bool, error) {
	st := p.textStates[text]
	return st.exists, st.visible, nil
}

// Poll runs fn without any real waiting. The iteration cap turns a wait
// that would block forever into a test failure.
func (p *fakePage) Poll(ctx context.Context, fn func() (bool, error), _ time.Duration) error {
	for range 10000 {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := fn()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return fmt.Errorf("poll never resolved")
}

var _ Page = (*fakePage)(nil)
