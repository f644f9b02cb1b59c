package anilist

const mediaFields = `
  id
  type
  title { romaji english native }
  description(asHtml: true)
  countryOfOrigin
  episodes
  chapters
  format
  source
  status
  season
  startDate { year }
  endDate { year }
  genres
  tags { name }
  studios { nodes { name } }
  siteUrl
  characters(perPage: 10, sort: ROLE) {
    edges { role node { id name { full native } } }
  }`

const mediaByIDQuery = `
query ($id: Int, $type: MediaType) {
  Media(id: $id, type: $type) {` + mediaFields + `
  }
}`

const searchMediaQuery = `
query ($search: String, $type: MediaType, $page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    pageInfo { currentPage lastPage total }
    media(search: $search, type: $type) { id }
  }
}`

const characterByIDQuery = `
query ($id: Int) {
  Character(id: $id) {
    id
    name { full native }
    description(asHtml: true)
    gender
    age
    dateOfBirth { year }
    siteUrl
    media(perPage: 8) { nodes { id title { romaji english native } } }
  }
}`

const searchCharactersQuery = `
query ($search: String, $page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    pageInfo { currentPage lastPage total }
    characters(search: $search) { id }
  }
}`
