// Command fgdemo builds and executes a deferred-shading frame graph on the
// noop GPU backend and writes a chart of its resource lifetimes.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend/wgpu"
	"github.com/gogpu/framegraph/chart"
	"github.com/gogpu/gputypes"
)

func main() {
	var (
		width   = flag.Int("width", 1280, "render target width")
		height  = flag.Int("height", 720, "render target height")
		frames  = flag.Int("frames", 3, "number of frames to execute")
		output  = flag.String("output", "lifetimes.png", "lifetime chart output file")
		debug   = flag.Bool("debug", false, "enable the debug overlay pass")
		verbose = flag.Bool("v", false, "log graph compilation and barriers")
	)
	flag.Parse()

	if *verbose {
		framegraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	dev, err := wgpu.OpenNoop()
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer dev.Destroy()

	alloc := framegraph.NewAllocator(dev, framegraph.WithMaxFreePerDescriptor(1))
	defer alloc.Destroy()

	// The swapchain image stays the same across frames on the noop backend.
	backbuffer, err := dev.CreateTexture(&framegraph.TextureDescriptor{
		Width:     uint32(*width),
		Height:    uint32(*height),
		Dimension: gputypes.TextureDimension2D,
		Format:    dev.SurfaceFormat(),
		Usage:     gputypes.TextureUsageRenderAttachment,
	}, "backbuffer")
	if err != nil {
		log.Fatalf("Failed to create backbuffer: %v", err)
	}
	defer dev.DestroyTexture(backbuffer)

	surface := framegraph.Surface{Format: dev.SurfaceFormat(), Width: uint32(*width), Height: uint32(*height)}
	var last *framegraph.Graph
	for i := range *frames {
		g, err := buildFrame(surface, framegraph.Texture{
			ID: backbuffer, Format: surface.Format, Width: surface.Width, Height: surface.Height,
			MipLevelCount: 1, ArrayLayers: 1,
		}, *debug)
		if err != nil {
			log.Fatalf("Frame %d: %v", i, err)
		}

		rec, err := dev.NewRecorder("fgdemo_frame")
		if err != nil {
			log.Fatalf("Frame %d: %v", i, err)
		}
		ctx := &framegraph.Context{Device: dev, Surface: surface, Recorder: rec}
		if err := g.Execute(ctx, alloc); err != nil {
			rec.Discard()
			log.Fatalf("Frame %d: %v", i, err)
		}
		if err := rec.Submit(0); err != nil {
			log.Fatalf("Frame %d: %v", i, err)
		}

		st := g.Stats()
		rs := rec.Stats()
		log.Printf("frame %d: %d/%d passes active, %d/%d resources live, %d barriers (%d elided)",
			i, st.ActivePasses, st.Passes, st.LiveResources, st.Resources, rs.Recorded, rs.Elided)
		last = g
	}

	as := alloc.Stats()
	log.Printf("allocator: %d created, %d reused, %d free", as.Created, as.Reused, as.Free)
	if n := alloc.Trim(); n > 0 {
		log.Printf("allocator: trimmed %d objects", n)
	}

	if last != nil {
		if err := chart.SavePNG(*output, last, &chart.Options{Scale: 2}); err != nil {
			log.Fatalf("Failed to save chart: %v", err)
		}
		log.Printf("Lifetime chart saved to %s\n", *output)
	}
}

// buildFrame declares a deferred-shading frame:
//
//	gbuffer -> lighting -> tonemap -> present
//	            ^
//	luminance --+ (compute, feeds tonemap)
//
// The optional debug pass samples the G-buffer into a texture nobody reads,
// so it is culled unless its output is presented.
func buildFrame(surface framegraph.Surface, swapchain framegraph.Texture, debug bool) (*framegraph.Graph, error) {
	w, h := surface.Width, surface.Height
	target := gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding

	b := framegraph.NewBuilder(framegraph.WithLabel("deferred"))

	b.AddRenderPass("gbuffer").ExecuteFunc(drawPass)
	albedo := b.CreateTexture("albedo", framegraph.Texture2D(w, h, gputypes.TextureFormatRGBA8Unorm, target))
	normal := b.CreateTexture("normal", framegraph.Texture2D(w, h, gputypes.TextureFormatRGBA8Unorm, target))
	depth := b.CreateTexture("depth", framegraph.Texture2D(w, h, gputypes.TextureFormatDepth24PlusStencil8, target))
	b.ColorAttachment(albedo, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{A: 1})
	b.ColorAttachment(normal, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{})
	b.DepthStencilAttachment(depth, gputypes.LoadOpClear, gputypes.StoreOpStore, 1, 0)

	b.AddRenderPass("lighting").ExecuteFunc(drawPass)
	b.Sample(albedo)
	b.Sample(normal)
	b.Sample(depth)
	hdr := b.CreateTexture("hdr", framegraph.Texture2D(w, h, gputypes.TextureFormatRGBA32Float, target))
	b.ColorAttachment(hdr, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{})

	b.AddComputePass("luminance").ExecuteFunc(drawPass)
	b.Sample(hdr)
	lum := b.CreateBuffer("luminance", framegraph.BufferDescriptor{
		Size:  256 * 4,
		Usage: gputypes.BufferUsageStorage,
	})
	b.Write(lum, framegraph.WritePlain)

	if debug {
		b.AddRenderPass("debug_normals").ExecuteFunc(drawPass)
		b.Sample(normal)
		overlay := b.CreateTexture("debug_overlay", framegraph.Texture2D(w, h, gputypes.TextureFormatRGBA8Unorm, target))
		b.Render(overlay)
	}

	b.AddRenderPass("tonemap").ExecuteFunc(drawPass)
	b.Sample(hdr)
	b.Read(lum, framegraph.ReadPlain)
	ldr := b.CreateTexture("ldr", framegraph.Texture2D(w, h, gputypes.TextureFormatRGBA8Unorm, target))
	b.ColorAttachment(ldr, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{})

	b.AddRenderPass("present").Preserve().ExecuteFunc(drawPass)
	back := b.ImportTexture("backbuffer", swapchain, framegraph.UndefinedState())
	b.Sample(ldr)
	b.ColorAttachment(back, gputypes.LoadOpLoad, gputypes.StoreOpStore, gputypes.Color{})

	return b.Build()
}

// drawPass stands in for real draw recording: it checks that every
// declared attachment was realized.
func drawPass(reg *framegraph.Registry, _ *framegraph.Context) error {
	for _, a := range reg.Attachments() {
		if a.Texture.ID == framegraph.InvalidID {
			log.Printf("pass %s: attachment %v not realized", reg.Pass(), a.Resource)
		}
	}
	return nil
}
