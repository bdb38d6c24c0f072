package controllers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Kariqs/goutam-store/catalog"
	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/store"
	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

// Common error response helper
func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	ctx.JSON(statusCode, gin.H{
		"message": message,
		"error":   errMsg,
	})
}

// GetProducts lists what a shopper can buy, filtered by search term and
// category. Names are matched in the session language unless ?lang is set.
func (c *Controller) GetProducts(ctx *gin.Context) {
	products, err := c.store.ListProducts(ctx.Request.Context())
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch products")
		return
	}

	sess := c.session(ctx)
	visible := catalog.Filter(products, catalog.Query{
		Search:   ctx.Query("search"),
		Category: ctx.DefaultQuery("category", catalog.AllCategories),
		Language: c.language(ctx, sess),
	})
	available := catalog.Filter(products, catalog.Query{})

	ctx.JSON(http.StatusOK, gin.H{
		"products":   visible,
		"categories": catalog.Categories(available),
		"language":   c.language(ctx, sess),
	})
}

func (c *Controller) GetCategories(ctx *gin.Context) {
	products, err := c.store.ListProducts(ctx.Request.Context())
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch categories")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"categories": catalog.Categories(catalog.Filter(products, catalog.Query{}))})
}

func (c *Controller) GetProduct(ctx *gin.Context) {
	product, err := c.store.GetProduct(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
		return
	}
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to retrieve product")
		return
	}
	ctx.JSON(http.StatusOK, product)
}

// AdminGetProducts lists every product, available or not.
func (c *Controller) AdminGetProducts(ctx *gin.Context) {
	products, err := c.store.ListProducts(ctx.Request.Context())
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch products")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"products": catalog.AdminSearch(products, ctx.Query("search"))})
}

func (c *Controller) CreateProduct(ctx *gin.Context) {
	var input models.ProductInput
	if !bindJSON(ctx, &input) {
		return
	}
	product, err := input.Validate()
	if err != nil {
		c.handleStoreError(ctx, err, "Failed to create product")
		return
	}

	if err := c.store.CreateProduct(ctx.Request.Context(), &product); err != nil {
		c.handleStoreError(ctx, err, "Failed to create product")
		return
	}
	c.log.Info("product created", "product_id", product.ID, "name", product.Name.En)
	ctx.JSON(http.StatusCreated, product)
}

func (c *Controller) UpdateProduct(ctx *gin.Context) {
	var input models.ProductInput
	if !bindJSON(ctx, &input) {
		return
	}
	product, err := input.Validate()
	if err != nil {
		c.handleStoreError(ctx, err, "Failed to update product")
		return
	}

	product.ID = ctx.Param("id")
	if err := c.store.UpdateProduct(ctx.Request.Context(), &product); err != nil {
		c.handleStoreError(ctx, err, "Failed to update product")
		return
	}
	ctx.JSON(http.StatusOK, product)
}

// ToggleAvailability sets the flag from the body, or flips it when the body
// does not say.
func (c *Controller) ToggleAvailability(ctx *gin.Context) {
	var body struct {
		Available *bool `json:"available"`
	}
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&body); err != nil {
			respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	id := ctx.Param("id")
	if body.Available == nil {
		current, err := c.store.GetProduct(ctx.Request.Context(), id)
		if err != nil {
			c.handleStoreError(ctx, err, "Unable to retrieve product")
			return
		}
		flipped := !current.Available
		body.Available = &flipped
	}

	product, err := c.store.SetProductAvailability(ctx.Request.Context(), id, *body.Available)
	if err != nil {
		c.handleStoreError(ctx, err, "Failed to update product")
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (c *Controller) DeleteProduct(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := c.store.DeleteProduct(ctx.Request.Context(), id); err != nil {
		c.handleStoreError(ctx, err, "Failed to delete product")
		return
	}
	c.log.Info("product deleted", "product_id", id, "by", c.user(ctx).ID)
	ctx.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// UploadProductImage stores the "image" form file and returns its public
// URL. With ?productId the product's image is replaced as well.
func (c *Controller) UploadProductImage(ctx *gin.Context) {
	if !c.images.Configured() {
		respondWithError(ctx, http.StatusServiceUnavailable, "Image uploads are not configured", nil)
		return
	}
	file, err := ctx.FormFile("image")
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "No file uploaded", err)
		return
	}
	if file.Size > maxImageSize {
		respondWithError(ctx, http.StatusBadRequest, "Image must be 5 MB or smaller", nil)
		return
	}

	var product models.Product
	productID := ctx.Query("productId")
	if productID != "" {
		if product, err = c.store.GetProduct(ctx.Request.Context(), productID); err != nil {
			c.handleStoreError(ctx, err, "Failed to validate product")
			return
		}
	}

	f, err := file.Open()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid form data", err)
		return
	}
	defer f.Close()

	url, err := c.images.Upload(ctx.Request.Context(), c.images.ProductImageKey(file.Filename), f, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		c.log.Error("product image upload failed", "file", file.Filename, "error", err)
		respondWithError(ctx, http.StatusBadGateway, "Failed to upload image", err)
		return
	}

	if productID != "" {
		product.Image = url
		if err := c.store.UpdateProduct(ctx.Request.Context(), &product); err != nil {
			c.handleStoreError(ctx, err, "Failed to update product")
			return
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Image uploaded", "url": url})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (c *Controller) ExportProducts(ctx *gin.Context) {
	products, err := c.store.ListProducts(ctx.Request.Context())
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch products")
		return
	}

	var buf bytes.Buffer
	if err := catalog.WriteWorkbook(&buf, products); err != nil {
		c.log.Error("product export failed", "error", err)
		respondWithError(ctx, http.StatusInternalServerError, "Failed to export products", err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="products.xlsx"`)
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportProducts reads an uploaded sheet in the export layout. Rows with an
// existing id update that product; every other row creates one.
func (c *Controller) ImportProducts(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "No file uploaded", err)
		return
	}
	f, err := file.Open()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid form data", err)
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	rows, problems, err := catalog.ReadWorkbook(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid workbook", err)
		return
	}

	reqCtx := ctx.Request.Context()
	created, updated := 0, 0
	for _, row := range rows {
		product, err := row.Input.Validate()
		if err != nil {
			problems = append(problems, "line "+strconv.Itoa(row.Line)+": "+err.Error())
			continue
		}
		if row.ID != "" {
			product.ID = row.ID
			err = c.store.UpdateProduct(reqCtx, &product)
			if err == nil {
				updated++
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				problems = append(problems, "line "+strconv.Itoa(row.Line)+": "+err.Error())
				continue
			}
		}
		if err := c.store.CreateProduct(reqCtx, &product); err != nil {
			problems = append(problems, "line "+strconv.Itoa(row.Line)+": "+err.Error())
			continue
		}
		created++
	}

	c.log.Info("product import finished", "created", created, "updated", updated, "problems", len(problems))
	ctx.JSON(http.StatusOK, gin.H{"created": created, "updated": updated, "problems": problems})
}
