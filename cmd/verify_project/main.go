// verify_project - 工程文件检查工具
//
// 加载工程文件，打印父特效解析表、每个特效的指令数和编译期诊断。
//
// Usage:
//
//	go run ./cmd/verify_project [--textures 7] <file.omagari.yaml>...
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/decker502/omagari/pkg/config"
	"github.com/decker502/omagari/pkg/diag"
	"github.com/decker502/omagari/pkg/effect"
	"github.com/decker502/omagari/pkg/project"
)

var texturesFlag = flag.Int("textures", len(config.ParticleTextures), "Size of the texture table to check texture_index against")

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: verify_project [--textures N] <file.omagari.yaml>...")
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		if !verify(path) {
			failed = true
		}
		fmt.Println()
	}
	if failed {
		os.Exit(1)
	}
}

// verify 检查单个工程文件，加载失败或纹理越界时返回 false
func verify(path string) bool {
	fmt.Printf("🔍 %s\n", path)

	doc, err := project.Load(path)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return false
	}
	fmt.Printf("✅ 加载成功，特效数量: %d\n\n", len(doc.Effects))

	hazards := &diag.Collector{}
	links := project.ResolveReport(doc, hazards)

	fmt.Printf("%-4s %-24s %-24s %-8s %6s %6s %6s %6s\n", "#", "name", "parent", "status", "init", "update", "render", "exprs")
	for i, d := range doc.Effects {
		asset := effect.Compile(d, hazards)
		parent := links[i].ParentName
		if links[i].Parent >= 0 {
			parent = fmt.Sprintf("%s [%d]", parent, links[i].Parent)
		}
		fmt.Printf("%-4d %-24s %-24s %-8s %6d %6d %6d %6d\n",
			i, d.Name, parent, links[i].Status,
			len(asset.Init), len(asset.Update), len(asset.Render), asset.Module.Len())
	}

	ok := true
	if err := project.CheckTextures(doc, *texturesFlag); err != nil {
		fmt.Printf("\n❌ %v\n", err)
		ok = false
	}

	if len(hazards.Hazards) == 0 {
		fmt.Printf("\n✅ 无诊断\n")
		return ok
	}
	fmt.Printf("\n⚠️  诊断 %d 条:\n", len(hazards.Hazards))
	for _, h := range hazards.Hazards {
		fmt.Printf("  - %s\n", h)
	}
	return ok
}
