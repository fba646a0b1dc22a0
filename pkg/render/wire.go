package render

import (
	"fmt"
	"strconv"
	"strings"
)

// ChunkKind tags an output chunk.
type ChunkKind uint8

const (
	ChunkShell ChunkKind = iota // initial synchronous markup
	ChunkPatch                  // content for a previously emitted slot
)

// String returns the string representation of the ChunkKind.
func (k ChunkKind) String() string {
	switch k {
	case ChunkShell:
		return "shell"
	case ChunkPatch:
		return "patch"
	default:
		return "unknown"
	}
}

// Chunk is one element of a render's output sequence. Shell chunks carry
// markup with embedded placeholder markers; patch chunks carry the markup
// for the placeholder identified by SlotID.
type Chunk struct {
	Kind   ChunkKind
	SlotID int
	Markup string
}

// Wire format. Changing any of these breaks deployed clients.
const (
	slotPrefix = "vs:"

	// ClientRuntime splices a patch template into the position marked by
	// its slot's placeholder, dropping the fallback between the markers.
	ClientRuntime = `<script>window.__vs=function(n){` +
		`var t=document.querySelector('template[data-vs="'+n+'"]'),p=document.getElementById('vs:'+n);` +
		`if(!t||!p)return;var m='/vs:'+n,e=p.nextSibling;` +
		`while(e&&!(e.nodeType===8&&e.nodeValue===m)){var x=e.nextSibling;e.parentNode.removeChild(e);e=x}` +
		`if(e)e.parentNode.removeChild(e);p.replaceWith(t.content);t.remove()}</script>`
)

func placeholderOpen(slot int) string {
	return `<template id="` + slotPrefix + strconv.Itoa(slot) + `"></template>`
}

func placeholderClose(slot int) string {
	return "<!--/" + slotPrefix + strconv.Itoa(slot) + "-->"
}

// Encoder turns chunks into the bytes sent over chunked HTTP. The client
// runtime is prepended to the first patch of a stream.
type Encoder struct {
	runtimeSent bool
}

// Encode returns the wire bytes of c.
func (e *Encoder) Encode(c Chunk) []byte {
	if c.Kind == ChunkShell {
		return []byte(c.Markup)
	}

	var b strings.Builder
	if !e.runtimeSent {
		b.WriteString(ClientRuntime)
		e.runtimeSent = true
	}
	id := strconv.Itoa(c.SlotID)
	b.WriteString(`<template data-vs="` + id + `">`)
	b.WriteString(c.Markup)
	b.WriteString(`</template><script>__vs(` + id + `)</script>`)
	return []byte(b.String())
}

// Reconstruct replays the client runtime: starting from the shell, each
// patch replaces its slot's placeholder and fallback. The result is the
// document the browser ends up showing.
func Reconstruct(chunks []Chunk) (string, error) {
	if len(chunks) == 0 {
		return "", nil
	}
	if chunks[0].Kind != ChunkShell {
		return "", fmt.Errorf("render: first chunk is a %s, want shell", chunks[0].Kind)
	}

	doc := chunks[0].Markup
	for i, c := range chunks[1:] {
		if c.Kind != ChunkPatch {
			return "", fmt.Errorf("render: chunk %d is a %s, want patch", i+1, c.Kind)
		}
		openMark, closeMark := placeholderOpen(c.SlotID), placeholderClose(c.SlotID)
		start := strings.Index(doc, openMark)
		if start < 0 {
			return "", fmt.Errorf("render: patch for slot %d arrived before its placeholder", c.SlotID)
		}
		end := strings.Index(doc[start:], closeMark)
		if end < 0 {
			return "", fmt.Errorf("render: placeholder for slot %d is not terminated", c.SlotID)
		}
		end += start + len(closeMark)
		doc = doc[:start] + c.Markup + doc[end:]
	}
	return doc, nil
}
