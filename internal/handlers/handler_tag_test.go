package handlers_test

import (
	"net/http"
	"testing"

	"github.com/SscSPs/mymoney_app/internal/apperrors"
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/SscSPs/mymoney_app/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TagHandlerTestSuite struct {
	routerSuite
}

func (suite *TagHandlerTestSuite) TestCreateTag_Duplicate() {
	suite.mockTag.On("CreateTag", mock.Anything, dto.CreateTagRequest{Name: "food"}, testUserID).
		Return(nil, apperrors.ErrDuplicate).Once()

	w := suite.do(http.MethodPost, "/api/v1/tags", `{"name":"food"}`)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *TagHandlerTestSuite) TestListTags() {
	suite.mockTag.On("ListTags", mock.Anything, testUserID).Return([]domain.Tag{{TagID: "t1", Name: "food"}}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/tags", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"name":"food"`)
}

func TestTagHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TagHandlerTestSuite))
}
