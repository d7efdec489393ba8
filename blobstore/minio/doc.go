// Package minio stores soa snapshots in MinIO or any other S3-compatible
// object store reachable with the MinIO Go client (Ceph, Garage, SeaweedFS).
//
// # Usage
//
//	client, err := minioblob.NewClient("localhost:9000", "minioadmin", "minioadmin", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := minioblob.NewStore(client, "tables", "snapshots/")
//	_, err = soa.SaveBlob(ctx, store, "particles.soa", table)
//
// Create streams the snapshot through an io.Pipe into PutObject, so a blob
// of unknown size is uploaded without buffering it whole. Aborting the
// writer cancels the upload and no object appears.
//
// Custom client settings (region, transport) go through minio.New directly:
//
//	client, _ := minio.New("s3.example.com", &minio.Options{
//	    Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
//	    Secure: true,
//	    Region: "eu-central-1",
//	})
package minio
