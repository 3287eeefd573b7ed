package asset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"assetrecords/internal/model"
	assetmodel "assetrecords/internal/model/asset"
	assetservice "assetrecords/internal/service/asset"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupHandlerEnv 初始化处理器测试环境 (SQLite 内存数据库 + gin 测试路由)
func setupHandlerEnv(t *testing.T) (*gorm.DB, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	// 1. 初始化 SQLite 内存数据库
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to sqlite: %v", err)
	}

	// 2. 自动迁移
	err = db.AutoMigrate(
		&assetmodel.AssetBatch{},
		&assetmodel.Asset{},
	)
	if err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	// 3. 初始化服务和处理器，注册与生产一致的路由
	handler := NewAssetHandler(assetservice.NewBatchService(db))

	engine := gin.New()
	v1 := engine.Group("/api/v1")
	assets := v1.Group("/assets")
	{
		assets.GET("", handler.ListAssets)
		assets.POST("", handler.CreateAssets)
		assets.PUT("/:batchId", handler.UpdateAssets)
		assets.DELETE("/:batchId", handler.DeleteAssets)
	}

	return db, engine
}

// doJSONRequest 发送JSON请求并解析统一响应
func doJSONRequest(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, *model.APIResponse) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, &resp
}

// createBatchRequestBody 构造一个合法的创建批次请求体
func createBatchRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"assets": []map[string]interface{}{
			{"name": "工商银行活期", "asset_type": 1, "amount": "12000.50"},
			{"name": "现金", "asset_type": 5, "amount": "3000.00"},
		},
	}
}

// TestCreateAssetsSuccess 创建批次成功返回201和批次数据
func TestCreateAssetsSuccess(t *testing.T) {
	db, engine := setupHandlerEnv(t)

	w, resp := doJSONRequest(t, engine, http.MethodPost, "/api/v1/assets", createBatchRequestBody())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", resp.Status)
	require.NotNil(t, resp.Data)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, time.Now().Format("20060102"), data["batch_no"])
	assert.Equal(t, "15000.5", data["total_amount"])

	var count int64
	require.NoError(t, db.Model(&assetmodel.Asset{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

// TestCreateAssetsInvalidBody 非法JSON返回400
func TestCreateAssetsInvalidBody(t *testing.T) {
	_, engine := setupHandlerEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assets", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestCreateAssetsEmptyList 空资产列表允许创建空批次，总额为零
func TestCreateAssetsEmptyList(t *testing.T) {
	_, engine := setupHandlerEnv(t)

	w, resp := doJSONRequest(t, engine, http.MethodPost, "/api/v1/assets", map[string]interface{}{
		"assets": []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "0", data["total_amount"])
}

// TestCreateAssetsInvalidAssetType 资产类型越界返回400
func TestCreateAssetsInvalidAssetType(t *testing.T) {
	_, engine := setupHandlerEnv(t)

	w, resp := doJSONRequest(t, engine, http.MethodPost, "/api/v1/assets", map[string]interface{}{
		"assets": []map[string]interface{}{
			{"name": "未知资产", "asset_type": 9, "amount": "100"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "failed", resp.Status)
}

// TestListAssetsGroupsByBatch 列表接口返回批次及分组资产
func TestListAssetsGroupsByBatch(t *testing.T) {
	_, engine := setupHandlerEnv(t)

	doJSONRequest(t, engine, http.MethodPost, "/api/v1/assets", createBatchRequestBody())
	doJSONRequest(t, engine, http.MethodPost, "/api/v1/assets", createBatchRequestBody())

	w, resp := doJSONRequest(t, engine, http.MethodGet, "/api/v1/assets", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, data["total"])

	batches, ok := data["batches"].([]interface{})
	require.True(t, ok)
	require.Len(t, batches, 2)
	for _, item := range batches {
		entry, ok := item.(map[string]interface{})
		require.True(t, ok)
		assets, ok := entry["assets"].([]interface{})
		require.True(t, ok)
		assert.Len(t, assets, 2)
	}
}

// TestUpdateAssetsNotFound 更新不存在的批次返回404
func TestUpdateAssetsNotFound(t *testing.T) {
	_, engine := setupHandlerEnv(t)

	w, resp := doJSONRequest(t, engine, http.MethodPut, "/api/v1/assets/9999", map[string]interface{}{
		"assets": []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "failed", resp.Status)
}

// TestUpdateAssetsForeignAssetID 引用他批次资产ID返回400
func TestUpdateAssetsForeignAssetID(t *testing.T) {
	db, engine := setupHandlerEnv(t)

	_, created := doJSONRequest(t, engine, http.MethodPost, "/api/v1/assets", createBatchRequestBody())
	data, ok := created.Data.(map[string]interface{})
	require.True(t, ok)
	batchID := uint(data["id"].(float64))

	// 拿一个不属于该批次的资产ID（不存在的ID同样视为越界）
	var maxAssetID uint
	require.NoError(t, db.Model(&assetmodel.Asset{}).Select("MAX(id)").Scan(&maxAssetID).Error)

	w, resp := doJSONRequest(t, engine, http.MethodPut, fmt.Sprintf("/api/v1/assets/%d", batchID), map[string]interface{}{
		"assets": []map[string]interface{}{
			{"id": maxAssetID + 100, "name": "越界资产", "asset_type": 5, "amount": "1"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "failed", resp.Status)
}

// TestUpdateAssetsInvalidBatchID 非数字批次ID返回400
func TestUpdateAssetsInvalidBatchID(t *testing.T) {
	_, engine := setupHandlerEnv(t)

	w, resp := doJSONRequest(t, engine, http.MethodPut, "/api/v1/assets/abc", map[string]interface{}{
		"assets": []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid batch ID", resp.Message)
}

// TestDeleteAssets 删除批次成功和批次不存在两种路径
func TestDeleteAssets(t *testing.T) {
	db, engine := setupHandlerEnv(t)

	_, created := doJSONRequest(t, engine, http.MethodPost, "/api/v1/assets", createBatchRequestBody())
	data, ok := created.Data.(map[string]interface{})
	require.True(t, ok)
	batchID := uint(data["id"].(float64))

	w, resp := doJSONRequest(t, engine, http.MethodDelete, fmt.Sprintf("/api/v1/assets/%d", batchID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", resp.Status)

	var count int64
	require.NoError(t, db.Model(&assetmodel.AssetBatch{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// 再次删除同一批次返回404
	w2, resp2 := doJSONRequest(t, engine, http.MethodDelete, fmt.Sprintf("/api/v1/assets/%d", batchID), nil)
	assert.Equal(t, http.StatusNotFound, w2.Code)
	assert.Equal(t, "failed", resp2.Status)
}
