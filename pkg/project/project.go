// Package project 管理粒子特效工程文档
//
// 职责：
//   - 工程文件的加载与保存（YAML 格式，与项目其他配置文件保持一致）
//   - 导出编译后的特效包
//   - 列出目录中的工程文件
//   - 按文档顺序解析父子特效名称
package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/diag"
	"github.com/decker502/omagari/pkg/effect"
)

const (
	// Suffix 工程文件后缀
	Suffix = ".omagari.yaml"
	// ExportSuffix 导出文件后缀
	ExportSuffix = ".baked.yaml"
)

var (
	// ErrInvalidData 工程文件内容无法解析
	ErrInvalidData = errors.New("invalid project data")
	// ErrInvalidFilename 文件名不符合工程文件命名规则
	ErrInvalidFilename = errors.New("invalid project filename")
)

// Document 工程文档：按顺序排列的特效列表
//
// 特效名称允许重复，父特效按名称在文档顺序中解析（见 Resolve）。
type Document struct {
	Effects []effect.Descriptor
}

// New 创建空文档
func New() *Document {
	return &Document{Effects: []effect.Descriptor{}}
}

// Add 追加特效，返回其索引
func (d *Document) Add(e effect.Descriptor) int {
	d.Effects = append(d.Effects, e)
	return len(d.Effects) - 1
}

// Names 按文档顺序返回所有特效名称（包含重复）
func (d *Document) Names() []string {
	names := make([]string, len(d.Effects))
	for i := range d.Effects {
		names[i] = d.Effects[i].Name
	}
	return names
}

// Clone 深拷贝文档
func (d *Document) Clone() *Document {
	c := &Document{Effects: make([]effect.Descriptor, len(d.Effects))}
	for i := range d.Effects {
		c.Effects[i] = d.Effects[i].Clone()
	}
	return c
}

// File 工程文件的序列化形式
type File struct {
	Effects []effect.Record `yaml:"effects" json:"effects" jsonschema:"description=Effects in document order. A parent must appear before its children."`
}

// ToFile 将文档转换为文件形式
func ToFile(doc *Document) File {
	f := File{Effects: make([]effect.Record, len(doc.Effects))}
	for i, e := range doc.Effects {
		f.Effects[i] = effect.ToRecord(e)
	}
	return f
}

// FromFile 将文件形式转换为文档
func FromFile(f File) (*Document, error) {
	doc := &Document{Effects: make([]effect.Descriptor, 0, len(f.Effects))}
	for i, r := range f.Effects {
		e, err := effect.FromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("effects[%d]: %w", i, err)
		}
		doc.Effects = append(doc.Effects, e)
	}
	return doc, nil
}

// Marshal 编码文档：字段按声明顺序输出，两空格缩进
func Marshal(doc *Document) ([]byte, error) {
	return encodeYAML(ToFile(doc))
}

// Unmarshal 解码文档
//
// 所有解码错误都包装 ErrInvalidData，并保留解码器的原始信息。
func Unmarshal(data []byte) (*Document, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	doc, err := FromFile(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return doc, nil
}

func encodeYAML(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load 从磁盘加载工程文件
//
// 返回：
//   - I/O 错误原样返回（可用 os.IsNotExist 等判断）
//   - 解析错误形如 "failed to parse project <path>: invalid project data: ..."，
//     可用 errors.Is(err, ErrInvalidData) 判断
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", path, err)
	}
	return doc, nil
}

// Save 保存工程文件
//
// 文件名必须以 Suffix 结尾，否则返回 ErrInvalidFilename。
func Save(doc *Document, path string) error {
	if !ValidFilename(filepath.Base(path)) {
		return fmt.Errorf("%w: %s", ErrInvalidFilename, path)
	}
	data, err := Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ValidFilename 判断文件名是否为工程文件（仅检查后缀）
func ValidFilename(name string) bool {
	return strings.HasSuffix(name, Suffix)
}

// ExportPath 计算导出文件路径
//
// 保留目录和基础名：工程后缀替换为 ExportSuffix；
// 没有工程后缀的文件名替换最后一个扩展名。
func ExportPath(projectPath string) string {
	if ValidFilename(projectPath) {
		return strings.TrimSuffix(projectPath, Suffix) + ExportSuffix
	}
	ext := filepath.Ext(projectPath)
	return strings.TrimSuffix(projectPath, ext) + ExportSuffix
}

// Bundle 编译文档中的所有特效，生成导出包
//
// sink 可为 nil。
func Bundle(doc *Document, sink diag.Sink) *particle.Bundle {
	b := &particle.Bundle{Effects: make([]particle.BundleEffect, 0, len(doc.Effects))}
	for _, e := range doc.Effects {
		b.Effects = append(b.Effects, particle.BundleEffect{
			Name:         e.Name,
			Parent:       e.Parent,
			TextureIndex: e.TextureIndex,
			Asset:        effect.Compile(e, sink),
		})
	}
	return b
}

// Export 编译文档并写入导出文件，返回写入的路径
func Export(doc *Document, projectPath string) (string, error) {
	data, err := particle.MarshalBundle(Bundle(doc, nil))
	if err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}
	out := ExportPath(projectPath)
	if err := os.WriteFile(out, data, 0644); err != nil {
		return "", err
	}
	return out, nil
}

// List 列出目录中的工程文件名（已排序）
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !ValidFilename(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
