package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestDescribe_Defaults 测试内置默认规则
func TestDescribe_Defaults(t *testing.T) {
	c := Default()

	spec, err := c.Describe(CategoryCommunication, SubTypeNone)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if spec.Quota != 5 || !spec.RequiresLink || spec.EvidenceMin != 1 {
		t.Errorf("Unexpected communication spec: %+v", spec)
	}

	// 主持场次要求两张对照截图
	spec, err = c.Describe(CategoryCommunity, SubTypeSpeaking)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if spec.EvidenceMin != 2 || spec.EvidenceMax != 2 {
		t.Errorf("Expected dual-screenshot evidence, got %+v", spec)
	}

	spec, err = c.Describe(CategoryOriginal, SubTypeNone)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if spec.Quota != 1 || !spec.RequiresMetrics || !spec.Enabled {
		t.Errorf("Unexpected original spec: %+v", spec)
	}

	if c.CommunityQuota() != 3 {
		t.Errorf("Expected community parent quota 3, got %d", c.CommunityQuota())
	}
}

// TestDescribe_Unknown 测试未知组合
func TestDescribe_Unknown(t *testing.T) {
	c := Default()

	if _, err := c.Describe(Category("bounty"), SubTypeNone); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Expected ErrUnknownCategory, got %v", err)
	}
	// communication 没有子类型
	if _, err := c.Describe(CategoryCommunication, SubTypeTG); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Expected ErrUnknownCategory, got %v", err)
	}
}

// TestLoadFile 测试目录覆盖文件
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
community_quota: 4
categories:
  communication:
    quota: 7
    point_value: 12
  community/speaking:
    enabled: false
  original:
    topic: "开发者故事"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	c := Default()
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	spec, _ := c.Describe(CategoryCommunication, SubTypeNone)
	if spec.Quota != 7 || spec.PointValue != 12 {
		t.Errorf("Expected quota 7 / points 12, got %+v", spec)
	}
	spec, _ = c.Describe(CategoryCommunity, SubTypeSpeaking)
	if spec.Enabled {
		t.Error("Expected speaking disabled by file override")
	}
	spec, _ = c.Describe(CategoryOriginal, SubTypeNone)
	if spec.Topic != "开发者故事" {
		t.Errorf("Expected topic override, got %q", spec.Topic)
	}
	if c.CommunityQuota() != 4 {
		t.Errorf("Expected community quota 4, got %d", c.CommunityQuota())
	}
}

// TestLoadFile_Missing 缺失文件返回错误
func TestLoadFile_Missing(t *testing.T) {
	c := Default()
	if err := c.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

type stubFetcher struct {
	override OriginalOverride
	err      error
}

func (s stubFetcher) FetchOriginalConfig(ctx context.Context) (OriginalOverride, error) {
	return s.override, s.err
}

// TestApplyRemote 测试远程覆盖合并
func TestApplyRemote(t *testing.T) {
	c := Default()

	topic := "每周之星"
	quota := 2
	applied := c.ApplyRemote(context.Background(), stubFetcher{
		override: OriginalOverride{Topic: &topic, Quota: &quota},
	})
	if !applied {
		t.Fatal("Expected remote config applied")
	}

	spec, _ := c.Describe(CategoryOriginal, SubTypeNone)
	if spec.Topic != "每周之星" || spec.Quota != 2 {
		t.Errorf("Unexpected merged spec: %+v", spec)
	}
	// 未下发的字段保持默认
	if !spec.Enabled || spec.PointValue != 50 {
		t.Errorf("Expected untouched fields preserved, got %+v", spec)
	}
}

// TestApplyRemote_FetchFailure 拉取失败时静默保留默认值
func TestApplyRemote_FetchFailure(t *testing.T) {
	c := Default()

	applied := c.ApplyRemote(context.Background(), stubFetcher{err: errors.New("connection refused")})
	if applied {
		t.Error("Expected applied=false on fetch failure")
	}

	// 默认配额与启用状态必须原样保留，提交不能因拉取失败被停用
	spec, _ := c.Describe(CategoryOriginal, SubTypeNone)
	if spec.Quota != 1 || !spec.Enabled {
		t.Errorf("Expected defaults preserved (quota=1, enabled), got %+v", spec)
	}
}

// TestApplyRemote_NilFetcher 未配置远程协作方
func TestApplyRemote_NilFetcher(t *testing.T) {
	c := Default()
	if c.ApplyRemote(context.Background(), nil) {
		t.Error("Expected applied=false for nil fetcher")
	}
}

// TestKeyString 测试键格式
func TestKeyString(t *testing.T) {
	if got := (Key{Category: CategoryCommunity, SubType: SubTypeTG}).String(); got != "community/tg" {
		t.Errorf("Unexpected key: %s", got)
	}
	if got := (Key{Category: CategoryOriginal}).String(); got != "original" {
		t.Errorf("Unexpected key: %s", got)
	}
}
