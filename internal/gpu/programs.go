// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

var (
	//go:embed shaders/common.wgsl
	commonShaderSource string

	//go:embed shaders/line.wgsl
	lineShaderSource string

	//go:embed shaders/line_packed.wgsl
	linePackedShaderSource string

	//go:embed shaders/bar.wgsl
	barShaderSource string

	//go:embed shaders/image.wgsl
	imageShaderSource string

	//go:embed shaders/surface.wgsl
	surfaceShaderSource string

	//go:embed shaders/colormap.wgsl
	colorMapShaderSource string
)

// ErrProgramsDestroyed is returned when using a registry after Destroy.
var ErrProgramsDestroyed = errors.New("gpu: program registry has been destroyed")

// scalarPlaceholder is substituted with the WGSL type of the data buffer.
const scalarPlaceholder = "{{SCALAR}}"

// ProgramID names one of the shader programs shared by all primitives.
type ProgramID uint8

const (
	// ProgramLine draws 2-component points read as vertex attributes.
	// It serves both data series and border/axis decorations.
	ProgramLine ProgramID = iota
	// ProgramLinePacked draws byte-packed 2-component points from storage.
	ProgramLinePacked
	// ProgramBar draws one quad per instance for histogram bins.
	ProgramBar
	// ProgramImage draws a quad textured from packed RGBA8 storage.
	ProgramImage
	// ProgramSurface draws a depth-tested triangle mesh over a z grid read
	// from storage, shaded through the window's color map.
	ProgramSurface

	programCount
)

// String returns the string representation of the ProgramID.
func (id ProgramID) String() string {
	switch id {
	case ProgramLine:
		return "line"
	case ProgramLinePacked:
		return "line_packed"
	case ProgramBar:
		return "bar"
	case ProgramImage:
		return "image"
	case ProgramSurface:
		return "surface"
	default:
		return fmt.Sprintf("ProgramID(%d)", uint8(id))
	}
}

// usesStorage reports whether the program reads its data through a
// storage buffer bound at group 1 instead of vertex attributes.
func (id ProgramID) usesStorage() bool {
	return id == ProgramLinePacked || id == ProgramImage || id == ProgramSurface
}

// usesColorMap reports whether the program reads the window's color map
// at group 2.
func (id ProgramID) usesColorMap() bool {
	return id == ProgramImage || id == ProgramSurface
}

// ShaderSource returns the complete WGSL source of a program specialized
// for the given scalar type.
func ShaderSource(id ProgramID, t ScalarType) string {
	var body string
	switch id {
	case ProgramLine:
		body = lineShaderSource
	case ProgramLinePacked:
		body = linePackedShaderSource
	case ProgramBar:
		body = barShaderSource
	case ProgramImage:
		body = imageShaderSource
	case ProgramSurface:
		body = surfaceShaderSource
	}
	head := commonShaderSource
	if id.usesColorMap() {
		head += "\n" + colorMapShaderSource
	}
	return head + "\n" + strings.ReplaceAll(body, scalarPlaceholder, t.wgslType())
}

// ProgramsOptions configures a Programs registry.
type ProgramsOptions struct {
	// SPIRV compiles WGSL to SPIR-V with naga before handing it to the
	// device, for backends that do not accept WGSL directly.
	SPIRV bool
}

// shaderKey identifies a shader module specialization.
type shaderKey struct {
	program ProgramID
	scalar  ScalarType
}

// PipelineDesc describes a window-scoped render pipeline.
type PipelineDesc struct {
	// Label is an optional debug name.
	Label string
	// Program selects the shader program.
	Program ProgramID
	// Scalar is the element type of the data buffer.
	Scalar ScalarType
	// Components is the vector width of one vertex attribute (1 or 2).
	Components int
	// StepMode advances the attribute per vertex or per instance.
	StepMode gputypes.VertexStepMode
	// Topology is the primitive assembly mode.
	Topology gputypes.PrimitiveTopology
	// Format is the color format of the window's render target.
	Format gputypes.TextureFormat
	// DepthTest enables depth testing and writes against the window's
	// depth buffer. Other pipelines pass the depth test unconditionally.
	DepthTest bool
}

// Programs is the registry of GPU objects shared by every primitive on one
// device: bind group layouts, pipeline layouts and shader modules.
//
// It is created once per rendering context and torn down by Destroy when
// the context goes away. Shader modules are compiled on first use.
type Programs struct {
	device hal.Device
	queue  hal.Queue
	spirv  bool

	uniformLayout  hal.BindGroupLayout
	storageLayout  hal.BindGroupLayout
	colorMapLayout hal.BindGroupLayout
	layouts       [programCount]hal.PipelineLayout

	shaders   map[shaderKey]hal.ShaderModule
	destroyed bool
}

// NewPrograms creates the shared layouts on the device.
func NewPrograms(device hal.Device, queue hal.Queue, opts ProgramsOptions) (*Programs, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	p := &Programs{
		device:  device,
		queue:   queue,
		spirv:   opts.SPIRV,
		shaders: make(map[shaderKey]hal.ShaderModule),
	}
	if err := p.createLayouts(); err != nil {
		p.Destroy()
		return nil, err
	}
	slogger().Info("gpu: program registry initialized", "spirv", opts.SPIRV)
	return p, nil
}

// Device returns the device the registry was created on.
func (p *Programs) Device() hal.Device { return p.device }

// Queue returns the queue the registry was created with.
func (p *Programs) Queue() hal.Queue { return p.queue }

// UniformLayout returns the group 0 layout shared by all programs.
func (p *Programs) UniformLayout() hal.BindGroupLayout { return p.uniformLayout }

func (p *Programs) createLayouts() error {
	uniformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "chart_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer: &gputypes.BufferBindingLayout{
					Type:             gputypes.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   UniformSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	storageLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "chart_storage_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create storage layout: %w", err)
	}
	p.storageLayout = storageLayout

	colorMapLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "chart_colormap_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create color map layout: %w", err)
	}
	p.colorMapLayout = colorMapLayout

	for id := ProgramID(0); id < programCount; id++ {
		groups := []hal.BindGroupLayout{p.uniformLayout}
		if id.usesStorage() {
			groups = append(groups, p.storageLayout)
		}
		if id.usesColorMap() {
			groups = append(groups, p.colorMapLayout)
		}
		layout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            "chart_" + id.String() + "_pipe_layout",
			BindGroupLayouts: groups,
		})
		if err != nil {
			return fmt.Errorf("create %s pipeline layout: %w", id, err)
		}
		p.layouts[id] = layout
	}
	return nil
}

// shader returns the module for a program specialization, compiling it on
// first use.
func (p *Programs) shader(id ProgramID, t ScalarType) (hal.ShaderModule, error) {
	key := shaderKey{program: id, scalar: t}
	if m, ok := p.shaders[key]; ok {
		return m, nil
	}

	src := ShaderSource(id, t)
	source := hal.ShaderSource{WGSL: src}
	if p.spirv {
		code, err := compileSPIRV(src)
		if err != nil {
			return nil, fmt.Errorf("compile %s/%s shader: %w", id, t, err)
		}
		source = hal.ShaderSource{SPIRV: code}
	}

	m, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "chart_" + id.String() + "_" + t.String(),
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s/%s shader: %w", id, t, err)
	}
	p.shaders[key] = m
	slogger().Debug("gpu: shader compiled", "program", id, "scalar", t)
	return m, nil
}

// CreatePipeline builds a render pipeline for one (primitive, window) pair.
// The caller owns the result and releases it with DestroyPipeline.
func (p *Programs) CreatePipeline(desc PipelineDesc) (hal.RenderPipeline, error) {
	if p.destroyed {
		return nil, ErrProgramsDestroyed
	}
	if desc.Program >= programCount {
		return nil, fmt.Errorf("gpu: unknown program %s", desc.Program)
	}

	module, err := p.shader(desc.Program, desc.Scalar)
	if err != nil {
		return nil, err
	}

	var buffers []gputypes.VertexBufferLayout
	if !desc.Program.usesStorage() {
		format, ok := desc.Scalar.VertexFormat(desc.Components)
		if !ok {
			return nil, &TypeError{Op: desc.Label, Type: desc.Scalar}
		}
		buffers = []gputypes.VertexBufferLayout{
			{
				ArrayStride: uint64(desc.Components * desc.Scalar.Size()), //nolint:gosec // small positive
				StepMode:    desc.StepMode,
				Attributes: []gputypes.VertexAttribute{
					{Format: format, Offset: 0, ShaderLocation: 0},
				},
			},
		}
	}

	depth := &hal.DepthStencilState{
		Format:       DepthFormat,
		DepthCompare: gputypes.CompareFunctionAlways,
	}
	if desc.DepthTest {
		depth.DepthWriteEnabled = true
		depth.DepthCompare = gputypes.CompareFunctionLess
	}

	blend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: p.layouts[desc.Program],
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    desc.Format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: desc.Topology,
			CullMode: gputypes.CullModeNone,
		},
		DepthStencil: depth,
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", desc.Label, err)
	}
	return pipeline, nil
}

// DestroyPipeline releases a pipeline created by CreatePipeline.
func (p *Programs) DestroyPipeline(pipeline hal.RenderPipeline) {
	if pipeline != nil {
		p.device.DestroyRenderPipeline(pipeline)
	}
}

// CreateStorageGroup binds a data buffer at group 1 for storage programs.
func (p *Programs) CreateStorageGroup(label string, buf *Buffer) (hal.BindGroup, error) {
	if p.destroyed {
		return nil, ErrProgramsDestroyed
	}
	if buf.Destroyed() {
		return nil, ErrBufferDestroyed
	}
	group, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label,
		Layout: p.storageLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.Handle().NativeHandle(), Offset: 0, Size: buf.AllocatedSize(),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s bind group: %w", label, err)
	}
	return group, nil
}

// DestroyGroup releases a bind group.
func (p *Programs) DestroyGroup(group hal.BindGroup) {
	if group != nil {
		p.device.DestroyBindGroup(group)
	}
}

// Destroy releases every shared object in reverse creation order.
// Safe to call multiple times.
func (p *Programs) Destroy() {
	if p == nil || p.destroyed {
		return
	}
	p.destroyed = true
	for key, m := range p.shaders {
		p.device.DestroyShaderModule(m)
		delete(p.shaders, key)
	}
	for i, layout := range p.layouts {
		if layout != nil {
			p.device.DestroyPipelineLayout(layout)
			p.layouts[i] = nil
		}
	}
	if p.colorMapLayout != nil {
		p.device.DestroyBindGroupLayout(p.colorMapLayout)
		p.colorMapLayout = nil
	}
	if p.storageLayout != nil {
		p.device.DestroyBindGroupLayout(p.storageLayout)
		p.storageLayout = nil
	}
	if p.uniformLayout != nil {
		p.device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	slogger().Info("gpu: program registry destroyed")
}

// compileSPIRV compiles WGSL source to little-endian SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, err
	}
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
