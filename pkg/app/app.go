// Package app 提供粒子特效预览宿主的核心包装器
//
// 该包将预览宿主的初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/components"
	"github.com/decker502/omagari/pkg/config"
	"github.com/decker502/omagari/pkg/diag"
	"github.com/decker502/omagari/pkg/ecs"
	"github.com/decker502/omagari/pkg/editor"
	"github.com/decker502/omagari/pkg/effect"
	"github.com/decker502/omagari/pkg/project"
	"github.com/decker502/omagari/pkg/systems"
)

const (
	lineHeight    = 16
	thumbnailSize = 14

	// embeddedTextureDir 内置纹理在嵌入资源中的路径
	embeddedTextureDir = "assets/particles"
)

// Config 定义应用启动配置
type Config struct {
	// Editor 编辑器配置，为 nil 时使用内置 data/editor.yaml
	Editor *config.EditorConfig
	// Project 要打开的项目文件，为空则从上次会话或 project_dir 中选择
	Project string
}

// App 预览宿主，实现 ebiten.Game 接口
//
// 持有当前文档，按需重新编译并重建场景，并在预览中模拟和绘制粒子。
type App struct {
	cfg      *config.EditorConfig
	ctx      *editor.Context
	session  *editor.SessionStore
	textures *editor.TextureLibrary

	entityManager *ecs.EntityManager
	spawner       *systems.EffectSpawnSystem
	simulation    *systems.ParticleSystem
	renderer      *systems.ParticleRenderSystem
	hazards       *diag.Collector
	paused        bool

	doc      *project.Document
	projects []string

	statusMessage string
}

// NewApp 创建预览宿主并打开初始项目
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	editorCfg := cfg.Editor
	if editorCfg == nil {
		var err error
		editorCfg, err = config.LoadEditorConfig("")
		if err != nil {
			return nil, fmt.Errorf("配置加载失败: %w", err)
		}
	}

	// 配置日志输出
	systems.SetVerbose(editorCfg.Verbose)
	if !editorCfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	textures, err := editor.LoadTextures(editorCfg.TextureDir)
	if err != nil {
		log.Printf("[App] Warning: %v (using embedded textures)", err)
		textures, err = editor.LoadEmbeddedTextures(embeddedTextureDir)
		if err != nil {
			return nil, fmt.Errorf("纹理加载失败: %w", err)
		}
	}
	log.Printf("[App] Loaded %d particle textures", textures.Len())

	em := ecs.NewEntityManager()
	hazards := &diag.Collector{}
	assets := particle.NewAssets()
	spawner := systems.NewEffectSpawnSystem(em, assets, textures.Images)
	spawner.Sink = hazards

	a := &App{
		cfg:           editorCfg,
		ctx:           editor.NewContext(cfg.Project),
		session:       editor.OpenSessionStore(editorCfg.AppName),
		textures:      textures,
		entityManager: em,
		spawner:       spawner,
		simulation:    systems.NewParticleSystem(em, assets, time.Now().UnixNano()),
		renderer:      systems.NewParticleRenderSystem(em, assets, textures.Masks),
		hazards:       hazards,
	}
	a.session.Restore(a.ctx)
	a.refreshProjectList()

	if a.ctx.Filename == "" && len(a.projects) > 0 {
		a.ctx.Filename = a.projects[0]
	}
	if a.ctx.Filename == "" {
		a.newDocument()
	} else {
		a.reload()
	}
	return a, nil
}

// WindowConfig 返回窗口配置
func (a *App) WindowConfig() config.WindowConfig {
	return a.cfg.Window
}

func (a *App) refreshProjectList() {
	names, err := project.List(a.cfg.ProjectDir)
	if err != nil {
		log.Printf("[App] Warning: failed to list %s: %v", a.cfg.ProjectDir, err)
		a.projects = nil
		return
	}
	a.projects = make([]string, len(names))
	for i, name := range names {
		a.projects[i] = filepath.Join(a.cfg.ProjectDir, name)
	}
}

// respawn 重新编译文档并重建场景
func (a *App) respawn() {
	a.hazards.Reset()
	a.ctx.Refresh(a.doc)
	if err := a.spawner.Spawn(a.doc); err != nil {
		var texErr *systems.TextureIndexError
		if errors.As(err, &texErr) {
			a.statusMessage = fmt.Sprintf("Spawn stopped at %q: texture %d of %d", texErr.Effect, texErr.Index, texErr.Count)
		} else {
			a.statusMessage = fmt.Sprintf("Spawn failed: %v", err)
		}
		return
	}
	a.statusMessage = fmt.Sprintf("Spawned %d effects (%d hazards)", len(a.spawner.Spawned()), len(a.hazards.Hazards))
}

func (a *App) reload() {
	doc, err := project.Load(a.ctx.Filename)
	if err != nil {
		log.Printf("[App] ERROR: %v", err)
		a.statusMessage = fmt.Sprintf("Load failed: %v", err)
		if a.doc == nil {
			a.doc = project.New()
		}
		return
	}
	a.doc = doc
	a.respawn()
	a.statusMessage = fmt.Sprintf("Loaded %s. %s", filepath.Base(a.ctx.Filename), a.statusMessage)
}

func (a *App) newDocument() {
	a.doc = project.New()
	a.doc.Add(effect.New())
	if a.ctx.Filename == "" {
		a.ctx.Filename = filepath.Join(a.cfg.ProjectDir, "untitled"+project.Suffix)
	}
	a.respawn()
}

func (a *App) save() {
	if err := project.Save(a.doc, a.ctx.Filename); err != nil {
		a.statusMessage = fmt.Sprintf("Save failed: %v", err)
		return
	}
	a.SaveSession()
	a.refreshProjectList()
	a.statusMessage = fmt.Sprintf("Saved %s", a.ctx.Filename)
}

func (a *App) export() {
	out, err := project.Export(a.doc, a.ctx.Filename)
	if err != nil {
		a.statusMessage = fmt.Sprintf("Export failed: %v", err)
		return
	}
	a.statusMessage = fmt.Sprintf("Exported %s", out)
}

func (a *App) nextProject() {
	a.refreshProjectList()
	if len(a.projects) == 0 {
		a.statusMessage = fmt.Sprintf("No project files in %s", a.cfg.ProjectDir)
		return
	}
	next := 0
	for i, p := range a.projects {
		if p == a.ctx.Filename {
			next = (i + 1) % len(a.projects)
			break
		}
	}
	a.ctx.Filename = a.projects[next]
	a.reload()
}

// SaveSession 记录当前项目和剪贴板，供下次启动恢复
func (a *App) SaveSession() {
	a.session.Remember(a.ctx)
	if err := a.session.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// Update 处理输入并推进粒子模拟
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyQ), inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		a.SaveSession()
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		a.respawn()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		a.save()
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		a.export()
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		a.newDocument()
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		a.reload()
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		a.nextProject()
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		a.simulation.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		a.paused = !a.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyF11):
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	if !a.paused {
		a.simulation.Update(1.0 / float64(ebiten.TPS()))
	}
	return nil
}

// Draw 绘制粒子和文字面板
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 24, G: 24, B: 32, A: 255})
	a.renderer.Draw(screen)

	y := 10
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Project: %s", a.ctx.Filename), 10, y)
	y += lineHeight
	ebitenutil.DebugPrintAt(screen, "R respawn  S save  E export  N new  L reload  Tab next  Space restart  P pause  Q quit", 10, y)
	y += lineHeight
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Particles: %d  FPS: %.0f", a.simulation.ParticleCount(), ebiten.ActualFPS()), 10, y)
	y += lineHeight * 2

	for i, sp := range a.spawner.Spawned() {
		x := 10
		if mat, ok := ecs.GetComponent[*components.MaterialComponent](a.entityManager, sp.Entity); ok {
			op := &ebiten.DrawImageOptions{}
			b := mat.Image.Bounds()
			op.GeoM.Scale(float64(thumbnailSize)/float64(b.Dx()), float64(thumbnailSize)/float64(b.Dy()))
			op.GeoM.Translate(float64(x), float64(y))
			screen.DrawImage(mat.Image, op)
		}
		x += thumbnailSize + 6

		ebitenutil.DebugPrintAt(screen, a.describe(i, sp), x, y)
		y += lineHeight
	}

	if len(a.hazards.Hazards) > 0 {
		y += lineHeight
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Hazards (%d):", len(a.hazards.Hazards)), 10, y)
		y += lineHeight
		for _, hz := range a.hazards.Hazards {
			ebitenutil.DebugPrintAt(screen, "  "+hz.String(), 10, y)
			y += lineHeight
		}
	}

	ebitenutil.DebugPrintAt(screen, a.statusMessage, 10, a.cfg.Window.Height-lineHeight-10)
}

func (a *App) describe(i int, sp systems.SpawnedEffect) string {
	link := "-"
	switch sp.Link.Status {
	case project.LinkLinked:
		link = fmt.Sprintf("-> %s [%d]", sp.Link.ParentName, sp.Link.Parent)
	case project.LinkSelf:
		link = fmt.Sprintf("-> %s [%d] (self)", sp.Link.ParentName, sp.Link.Parent)
	case project.LinkNone:
	default:
		link = fmt.Sprintf("-> %s (%s)", sp.Link.ParentName, sp.Link.Status)
	}

	texture := "none"
	if d := a.doc.Effects[i]; d.TextureIndex != nil {
		texture = a.textures.Label(*d.TextureIndex)
	}

	asset := a.spawner.Assets.MustGet(sp.Handle)
	return fmt.Sprintf("[%d] %-20s %-24s tex=%-7s init=%d update=%d render=%d exprs=%d",
		i, sp.Name, link, texture, len(asset.Init), len(asset.Update), len(asset.Render), asset.Module.Len())
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.cfg.Window.Width, a.cfg.Window.Height
}
