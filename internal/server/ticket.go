package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ticketdomain "github.com/smallbiznis/voltra/internal/ticket/domain"
)

type openTicketRequest struct {
	SubscriberID string `json:"subscriber_id"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
}

func (s *Server) OpenTicket(c *gin.Context) {
	var req openTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	detail, err := s.ticketSvc.Open(c.Request.Context(), ticketdomain.OpenRequest{
		SubscriberID: req.SubscriberID,
		Subject:      req.Subject,
		Body:         req.Body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": detail})
}

func (s *Server) GetTicket(c *gin.Context) {
	detail, err := s.ticketSvc.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

type replyTicketRequest struct {
	AuthorID string `json:"author_id"`
	Body     string `json:"body"`
}

func (s *Server) ReplyTicket(c *gin.Context) {
	var req replyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	detail, err := s.ticketSvc.Reply(c.Request.Context(), ticketdomain.ReplyRequest{
		Token:    c.Param("token"),
		AuthorID: req.AuthorID,
		Body:     req.Body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) ListTickets(c *gin.Context) {
	var filter ticketdomain.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tickets, err := s.ticketSvc.ListAll(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tickets})
}

func (s *Server) ListSubscriberTickets(c *gin.Context) {
	var filter ticketdomain.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tickets, err := s.ticketSvc.ListBySubscriber(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tickets})
}
