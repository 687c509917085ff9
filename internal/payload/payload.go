// Package payload normalizes one processed email into the single
// message the Discord sender delivers.
package payload

import (
	"fmt"
	"log/slog"
	"path"
	"strings"
)

// Source records where an artifact came from.
type Source int

const (
	SourceInline   Source = iota // image part referenced by Content-ID
	SourceAttached               // image or named attachment part
	SourceExternal               // downloaded from an HTML image URL
	SourceDocument               // rendered PDF
)

// Limits imposed by the downstream channel. Exceeding them is a
// partial failure: excess artifacts are dropped, title and snippet
// always go out.
const (
	maxArtifacts  = 10
	maxTotalBytes = 8 << 20
)

const (
	noSubjectPlaceholder = "(no subject)"
	unknownSender        = "(unknown)"
	anonymousSender      = "Anonymous"
)

// Artifact is one file delivered alongside the message.
type Artifact struct {
	Name   string
	Data   []byte
	Source Source
}

// Payload is the normalized forward message: constructed once per
// email, consumed exactly once by the sender, then released.
type Payload struct {
	Title     string
	Snippet   string
	Sender    string
	Artifacts []Artifact

	// Featured is the artifact name shown inline in the embed, empty
	// when there is no image to feature.
	Featured string
}

// Release drops artifact buffers so they can be reclaimed. The
// forwarder defers it on every exit path, delivery failures included.
func (p *Payload) Release() {
	for i := range p.Artifacts {
		p.Artifacts[i].Data = nil
	}
	p.Artifacts = nil
}

// Assembler builds payloads under the channel limits.
type Assembler struct {
	AnonymizeSender bool
	Logger          *slog.Logger
}

// Assemble combines the extracted pieces into one Payload. Artifact
// order is preserved; names are made collision-free by suffixing; the
// first non-document artifact becomes the featured image.
func (a *Assembler) Assemble(subject, sender, snippet string, artifacts []Artifact) *Payload {
	p := &Payload{
		Title:   subject,
		Snippet: snippet,
		Sender:  sender,
	}
	if p.Title == "" {
		p.Title = noSubjectPlaceholder
	}
	if a.AnonymizeSender {
		p.Sender = anonymousSender
	} else if p.Sender == "" {
		p.Sender = unknownSender
	}

	used := make(map[string]struct{}, len(artifacts))
	total := 0
	for _, art := range artifacts {
		if len(p.Artifacts) >= maxArtifacts {
			a.Logger.Warn("dropping artifact over count limit", "name", art.Name)
			continue
		}
		if total+len(art.Data) > maxTotalBytes {
			a.Logger.Warn("dropping artifact over size limit", "name", art.Name, "bytes", len(art.Data))
			continue
		}
		art.Name = uniqueName(art.Name, used)
		used[art.Name] = struct{}{}
		total += len(art.Data)
		p.Artifacts = append(p.Artifacts, art)

		if p.Featured == "" && art.Source != SourceDocument {
			p.Featured = art.Name
		}
	}

	return p
}

// uniqueName disambiguates colliding filenames by suffixing the base:
// logo.png, logo-2.png, logo-3.png.
func uniqueName(name string, used map[string]struct{}) string {
	if _, taken := used[name]; !taken {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}
