// Package vrt renders a volume with GPU raycasting: the volume lives
// in an R16Sint 3D texture, a 4096x1 RGBA texture holds the transfer
// function, and a full-screen quad drives the raycast fragment shader.
package vrt

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/prateek-tiwarii/synpacs/internal/volume"
)

//go:embed raycast.wgsl
var raycastWGSL string

// TransferFunctionSize is the number of texels in the 1D transfer
// function; it spans the normalized HU range (hu+1024)/4095.
const TransferFunctionSize = 4096

const uniformBytes = 2*64 + 3*16 // two mat4x4 plus three vec4

// Renderer owns the GPU resources of one volume rendering view. It is
// not safe for concurrent use; callers serialize SetVolume, Render and
// Dispose.
type Renderer struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	pipeline   *wgpu.RenderPipeline
	bindGroup  *wgpu.BindGroup
	uniformBuf *wgpu.Buffer

	volumeTex  *wgpu.Texture
	volumeView *wgpu.TextureView
	tfTex      *wgpu.Texture
	tfView     *wgpu.TextureView
	tfSampler  *wgpu.Sampler

	dims    [3]int
	spacing [3]float32

	// Camera is the arcball driving the view; exposed so input
	// handlers mutate it directly.
	Camera *Camera

	// StepSize is the ray march step in mm.
	StepSize float32
	// OpacityScale scales the transfer function's opacity before the
	// step-length correction.
	OpacityScale float32

	disposed bool
}

// New compiles the raycast pipeline against the given target format.
// The device is the opaque GPU context acquired by the host.
func New(device *wgpu.Device, targetFormat wgpu.TextureFormat) (*Renderer, error) {
	if device == nil {
		return nil, ErrGPUUnavailable
	}

	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "vrt_raycast",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: raycastWGSL},
	})
	if err != nil {
		return nil, &ShaderError{Stage: "compile", Err: err}
	}
	defer shader.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "vrt_raycast",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: targetFormat,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return nil, &ShaderError{Stage: "link", Err: err}
	}

	uniformBuf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "vrt_uniforms",
		Size:  uniformBytes,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		pipeline.Release()
		return nil, err
	}

	tfSampler, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		pipeline.Release()
		uniformBuf.Release()
		return nil, err
	}

	r := &Renderer{
		device:       device,
		queue:        device.GetQueue(),
		pipeline:     pipeline,
		uniformBuf:   uniformBuf,
		tfSampler:    tfSampler,
		Camera:       NewCamera(500),
		StepSize:     1,
		OpacityScale: 1,
	}
	if err := r.SetTransferFunction(DefaultTransferFunction()); err != nil {
		r.Dispose()
		return nil, err
	}
	return r, nil
}

// SetVolume uploads v into the 3D texture and frames the camera on it.
// A per-axis size over the device's 3D texture limit fails with
// *DimensionError.
func (r *Renderer) SetVolume(v *volume.Volume) error {
	if r.disposed {
		return ErrDisposed
	}

	limits := r.device.GetLimits()
	max := int(limits.Limits.MaxTextureDimension3D)
	for _, axis := range []struct {
		name string
		size int
	}{{"x", v.Cols}, {"y", v.Rows}, {"z", v.Slices}} {
		if axis.size > max {
			return &DimensionError{Axis: axis.name, Size: axis.size, Max: max}
		}
	}

	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "vrt_volume",
		Size: wgpu.Extent3D{
			Width:              uint32(v.Cols),
			Height:             uint32(v.Rows),
			DepthOrArrayLayers: uint32(v.Slices),
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension3D,
		Format:        wgpu.TextureFormatR16Sint,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}

	data := make([]byte, len(v.Data)*2)
	for i, hu := range v.Data {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(hu))
	}
	if err := r.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture: tex,
			Aspect:  wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			BytesPerRow:  uint32(v.Cols * 2),
			RowsPerImage: uint32(v.Rows),
		},
		&wgpu.Extent3D{
			Width:              uint32(v.Cols),
			Height:             uint32(v.Rows),
			DepthOrArrayLayers: uint32(v.Slices),
		},
	); err != nil {
		view.Release()
		tex.Release()
		return err
	}

	if r.volumeView != nil {
		r.volumeView.Release()
		r.volumeTex.Release()
	}
	r.volumeTex, r.volumeView = tex, view
	r.dims = [3]int{v.Cols, v.Rows, v.Slices}
	r.spacing = [3]float32{
		float32(v.Spacing[0]),
		float32(v.Spacing[1]),
		float32(v.Spacing[2]),
	}

	// Frame the whole volume: back off to twice its diagonal.
	w, h, d := v.PhysicalExtent()
	diag := float32(math.Sqrt(w*w + h*h + d*d))
	r.Camera = NewCamera(2 * diag)

	return r.rebuildBindGroup()
}

// SetTransferFunction replaces the 4096x1 RGBA lookup texture. tf must
// hold TransferFunctionSize*4 bytes.
func (r *Renderer) SetTransferFunction(tf []uint8) error {
	if r.disposed {
		return ErrDisposed
	}
	if len(tf) != TransferFunctionSize*4 {
		return fmt.Errorf("transfer function must hold %d bytes, got %d", TransferFunctionSize*4, len(tf))
	}

	if r.tfTex == nil {
		tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "vrt_transfer_function",
			Size: wgpu.Extent3D{
				Width:              TransferFunctionSize,
				Height:             1,
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        wgpu.TextureFormatRGBA8Unorm,
			Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		})
		if err != nil {
			return err
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return err
		}
		r.tfTex, r.tfView = tex, view
	}

	if err := r.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: r.tfTex, Aspect: wgpu.TextureAspectAll},
		tf,
		&wgpu.TextureDataLayout{BytesPerRow: TransferFunctionSize * 4, RowsPerImage: 1},
		&wgpu.Extent3D{Width: TransferFunctionSize, Height: 1, DepthOrArrayLayers: 1},
	); err != nil {
		return err
	}

	if r.volumeView != nil {
		return r.rebuildBindGroup()
	}
	return nil
}

func (r *Renderer) rebuildBindGroup() error {
	layout := r.pipeline.GetBindGroupLayout(0)
	defer layout.Release()

	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "vrt_bind_group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.uniformBuf, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: r.volumeView},
			{Binding: 2, TextureView: r.tfView},
			{Binding: 3, Sampler: r.tfSampler},
		},
	})
	if err != nil {
		return err
	}
	if r.bindGroup != nil {
		r.bindGroup.Release()
	}
	r.bindGroup = bg
	return nil
}

// Render draws one frame into target. width and height set the aspect
// ratio of the projection.
func (r *Renderer) Render(target *wgpu.TextureView, width, height int) error {
	if r.disposed {
		return ErrDisposed
	}
	if r.bindGroup == nil || r.volumeView == nil {
		return ErrGPUUnavailable
	}

	if err := r.writeUniforms(float32(width) / float32(height)); err != nil {
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return ErrContextLost
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{A: 1},
		}},
	})
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, r.bindGroup, nil)
	pass.Draw(6, 1, 0, 0)
	if err := pass.End(); err != nil {
		return ErrContextLost
	}
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return ErrContextLost
	}
	defer cmd.Release()
	r.queue.Submit(cmd)
	return nil
}

// writeUniforms packs the inverse camera matrices and volume geometry.
func (r *Renderer) writeUniforms(aspect float32) error {
	center := mgl32.Vec3{
		float32(r.dims[0]) * r.spacing[0] / 2,
		float32(r.dims[1]) * r.spacing[1] / 2,
		float32(r.dims[2]) * r.spacing[2] / 2,
	}
	view := r.Camera.ViewMatrix(center)
	proj := r.Camera.ProjMatrix(aspect)

	invView := view.Inv()
	invProj := proj.Inv()

	buf := make([]float32, 0, uniformBytes/4)
	buf = append(buf, invView[:]...)
	buf = append(buf, invProj[:]...)
	buf = append(buf,
		float32(r.dims[0]), float32(r.dims[1]), float32(r.dims[2]), 0,
		r.spacing[0], r.spacing[1], r.spacing[2], 0,
		r.StepSize, r.OpacityScale, 0, 0,
	)

	raw := make([]byte, len(buf)*4)
	for i, f := range buf {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(f))
	}
	return r.queue.WriteBuffer(r.uniformBuf, 0, raw)
}

// Dispose releases every GPU resource. Idempotent; the renderer is
// unusable afterwards.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	for _, res := range []interface{ Release() }{
		r.bindGroup, r.volumeView, r.volumeTex, r.tfView, r.tfTex,
		r.tfSampler, r.uniformBuf, r.pipeline,
	} {
		if res != nil {
			res.Release()
		}
	}
}

// DefaultTransferFunction is a soft-tissue ramp: transparent air
// climbing through translucent gray into opaque white at bone.
func DefaultTransferFunction() []uint8 {
	tf := make([]uint8, TransferFunctionSize*4)
	for i := 0; i < TransferFunctionSize; i++ {
		// Normalized position corresponds to hu = i*4095/4095 - 1024.
		hu := float64(i)*4095/float64(TransferFunctionSize-1) - 1024

		var gray, alpha float64
		switch {
		case hu < -200:
			// air and lung stay invisible
		case hu < 200:
			gray = (hu + 200) / 400
			alpha = 0.05 * gray
		default:
			gray = math.Min(1, 0.5+(hu-200)/1600)
			alpha = math.Min(1, 0.1+(hu-200)/1200)
		}

		tf[i*4+0] = uint8(gray * 255)
		tf[i*4+1] = uint8(gray * 255)
		tf[i*4+2] = uint8(gray * 255)
		tf[i*4+3] = uint8(alpha * 255)
	}
	return tf
}
