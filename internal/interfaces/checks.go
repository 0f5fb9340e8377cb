package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/medprep/importer/internal/database"
	"github.com/medprep/importer/internal/database/chapters"
	"github.com/medprep/importer/internal/database/concepts"
	imagesdb "github.com/medprep/importer/internal/database/images"
	"github.com/medprep/importer/internal/database/questions"
	"github.com/medprep/importer/internal/importer"
	"github.com/medprep/importer/internal/storage"
	"github.com/medprep/importer/internal/storage/providers/bucket"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ importer.ChapterStore = (*chapters.Repository)(nil)
var _ importer.ConceptStore = (*concepts.Repository)(nil)
var _ importer.QuestionStore = (*questions.Repository)(nil)
var _ importer.ImageStore = (*imagesdb.Repository)(nil)
var _ importer.RunStore = (*database.Database)(nil)
var _ importer.RollbackStore = (*database.Database)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ storage.Client = (*bucket.Client)(nil)
