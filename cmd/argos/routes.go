package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/argos"
	"github.com/dmitrymomot/argos/filters"
)

type greeting struct {
	Message string `json:"message"`
	Locale  string `json:"locale"`
}

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type apiError struct {
	Error string `json:"error"`
}

func init() {
	argos.FilterPath(".*", 0, filters.RequestID())
	argos.FilterPath(".*", 5, filters.Locale(language.English, language.German))
	argos.FilterPath("/api/hello.*", 1, requireToken)

	argos.GET("/api/hello", argos.ModeText, hello)
	argos.GET("/api/greeting", argos.ModeJSON, greet)
	argos.GET("/items/:id", argos.ModeJSON, getItem)
	argos.GET("/page/:name", argos.ModeHTML, page)
}

// requireToken rejects /api/hello requests that carry no token header.
func requireToken(r *argos.Request) argos.Decision {
	if !r.HasHeader("token") {
		return argos.Reject(argos.ErrUnauthorized("no token").WithHeader("filter", "rejected"))
	}
	return argos.Continue(r)
}

func hello(r *argos.Request) (string, error) {
	name := r.QueryValue("name")
	if name == "" {
		name = "world"
	}
	return "hello " + name, nil
}

func greet(r *argos.Request) (greeting, error) {
	name := r.QueryValue("name")
	if name == "" {
		return greeting{}, argos.NewError(http.StatusBadRequest, apiError{Error: "name is required"})
	}
	locale, _ := r.Attribute(filters.LocaleAttribute)
	return greeting{Message: "hello " + name, Locale: locale}, nil
}

func getItem(r *argos.Request) (item, error) {
	id, err := strconv.Atoi(r.Param("id"))
	if err != nil {
		return item{}, argos.NewError(http.StatusBadRequest, apiError{Error: "id must be a number"}).WithCause(err)
	}
	if id <= 0 {
		return item{}, argos.NewError(http.StatusNotFound, apiError{Error: "no such item"}).
			WithCause(errors.New("non-positive id"))
	}
	return item{ID: id, Name: fmt.Sprintf("item %d", id)}, nil
}

func page(r *argos.Request) (templ.Component, error) {
	name := r.Param("name")
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<!doctype html><title>%[1]s</title><h1>%[1]s</h1>", templ.EscapeString(name))
		return err
	}), nil
}
