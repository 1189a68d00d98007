package graphics

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
)

// StageMarker separates the vertex stage from the fragment stage in a
// combined shader source file.
const StageMarker = "# frag"

var ErrMissingStageMarker = errors.New("shader source has no " + StageMarker + " marker")

//go:embed shaders/batch.glsl
var batchShader string

// ShaderSource holds the source text of both program stages.
type ShaderSource struct {
	Vertex   string
	Fragment string
}

// SplitShaderSource splits a combined source at StageMarker. The marker line
// itself belongs to neither stage.
func SplitShaderSource(src string) (ShaderSource, error) {
	i := strings.Index(src, StageMarker)
	if i < 0 {
		return ShaderSource{}, ErrMissingStageMarker
	}
	vert := src[:i]
	frag := src[i+len(StageMarker):]
	if j := strings.IndexByte(frag, '\n'); j >= 0 {
		frag = frag[j+1:]
	} else {
		frag = ""
	}
	if strings.TrimSpace(vert) == "" || strings.TrimSpace(frag) == "" {
		return ShaderSource{}, fmt.Errorf("shader source has an empty stage")
	}
	return ShaderSource{Vertex: vert, Fragment: frag}, nil
}

// LoadShaderSource reads and splits the combined shader at path. An empty
// path selects the built-in batch shader.
func LoadShaderSource(path string) (ShaderSource, error) {
	if path == "" {
		return SplitShaderSource(batchShader)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ShaderSource{}, fmt.Errorf("could not read shader file: %w", err)
	}
	src, err := SplitShaderSource(string(data))
	if err != nil {
		return ShaderSource{}, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}
