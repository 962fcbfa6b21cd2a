package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/gin-gonic/gin"

	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

// maxUploadSize caps product image uploads at 5 MB.
const maxUploadSize = 5 << 20

// NewS3Uploader builds the uploader for the product image bucket.
func NewS3Uploader() (*s3manager.Uploader, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
	})
	if err != nil {
		return nil, err
	}
	return s3manager.NewUploader(sess), nil
}

// handleUploadImage stores one image in the object store and returns its
// public URL. The key carries a timestamp prefix so re-uploads of the
// same filename never collide.
func handleUploadImage(uploader *s3manager.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.BadRequestResponse(c, "No file provided")
			return
		}
		if fileHeader.Size > maxUploadSize {
			utils.BadRequestResponse(c, "File exceeds the 5MB upload limit")
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to read upload")
			return
		}
		defer file.Close()

		bucket := os.Getenv("S3_BUCKET")
		if bucket == "" {
			utils.InternalServerErrorResponse(c, "Object storage not configured")
			return
		}

		key := fmt.Sprintf("uploads/%d_%s", time.Now().UnixMilli(), filepath.Base(fileHeader.Filename))

		result, err := uploader.Upload(&s3manager.UploadInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        file,
			ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to store upload")
			return
		}

		utils.CreatedResponse(c, "Upload complete", gin.H{
			"url": result.Location,
			"key": key,
		})
	}
}
