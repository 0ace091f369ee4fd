package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/decker502/omagari/pkg/embedded"
)

// DefaultEditorConfigPath 内嵌默认配置的路径
const DefaultEditorConfigPath = "data/editor.yaml"

// EditorConfig 预览宿主的配置
type EditorConfig struct {
	// AppName gdata 存储使用的应用名
	AppName string `yaml:"app_name"`

	// ProjectDir 工程文件目录，List 和 Tab 切换在此目录中查找
	ProjectDir string `yaml:"project_dir"`

	// TextureDir 内置粒子纹理所在目录
	TextureDir string `yaml:"texture_dir"`

	// Window 窗口设置
	Window WindowConfig `yaml:"window"`

	// Verbose 是否输出逐特效的生成日志
	Verbose bool `yaml:"verbose"`
}

// WindowConfig 窗口尺寸和标题
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// DefaultEditorConfig 返回默认配置
func DefaultEditorConfig() *EditorConfig {
	return &EditorConfig{
		AppName:    "omagari",
		ProjectDir: "data/examples",
		TextureDir: "assets/particles",
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Omagari Particle Editor",
		},
	}
}

// LoadEditorConfig 从 YAML 文件加载配置
//
// path 为空时读取内嵌的 data/editor.yaml。
func LoadEditorConfig(path string) (*EditorConfig, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		path = DefaultEditorConfigPath
		data, err = embedded.ReadFile(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", path, err)
	}

	cfg, err := ParseEditorConfig(data)
	if err != nil {
		return nil, fmt.Errorf("无法解析配置文件 %s: %w", path, err)
	}
	return cfg, nil
}

// ParseEditorConfig 解析 YAML 配置，缺失字段取默认值
func ParseEditorConfig(data []byte) (*EditorConfig, error) {
	cfg := DefaultEditorConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := validateEditorConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateEditorConfig(cfg *EditorConfig) error {
	if cfg.AppName == "" {
		return fmt.Errorf("app_name 不能为空")
	}
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		return fmt.Errorf("窗口尺寸无效: %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	return nil
}
